package dashboard

import (
	"github.com/sells-group/co2-dashboard/internal/model"
)

func rec(country string, year int, co2, perCapita, coal, oil, gas float64) model.EmissionRecord {
	return model.EmissionRecord{
		Country:      country,
		Year:         year,
		CO2:          co2,
		CO2PerCapita: perCapita,
		CoalCO2:      coal,
		OilCO2:       oil,
		GasCO2:       gas,
	}
}

// fixtureRecords is a small dataset with regions, World and nations across
// three years, deliberately out of order.
func fixtureRecords() []model.EmissionRecord {
	records := []model.EmissionRecord{
		rec("Europe", 2010, 4000, 8.0, 1000, 1500, 1200),
		rec("World", 2010, 33000, 4.8, 14000, 11000, 6300),
		rec("France", 2010, 360, 5.7, 15, 200, 80),
		rec("Asia", 2000, 9000, 2.5, 5000, 2500, 900),
		rec("Asia", 2010, 16000, 4.0, 10000, 3500, 1800),
		rec("Africa", 2010, 1200, 1.1, 400, 500, 250),
		rec("World", 2000, 25000, 4.1, 9000, 10000, 4800),
		rec("Germany", 2010, 830, 10.1, 330, 280, 200),
		rec("Europe", 2000, 4300, 8.5, 1200, 1600, 1100),
		rec("Antarctica", 2010, 0, 0, 0, 0, 0),
		rec("Oceania", 2010, 450, 11.0, 220, 130, 90),
		rec("South America", 2010, 1100, 2.8, 60, 650, 250),
		rec("North America", 2010, 6900, 13.0, 2300, 2800, 1800),
		rec("Germany", 2020, 640, 7.7, 190, 220, 210),
	}
	for i := range records {
		records[i].ISOCode = map[string]string{"France": "FRA", "Germany": "DEU"}[records[i].Country]
		records[i].Population = 1e6
		records[i].GDP = float64(i+1) * 1e9
		records[i].DeriveGDPPerCapita()
	}
	return records
}
