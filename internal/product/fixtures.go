package product

import (
	_ "embed"
)

//go:embed data.json
var fixtureData []byte

type fixture struct {
	ID    interface{} `json:"id"`
	Name  string      `json:"name"`
	Price float64     `json:"price"`
}

func loadFixtures() ([]fixture, error) {
	var fixtures []fixture
	if err := json.Unmarshal(fixtureData, &fixtures); err != nil {
		return nil, err
	}
	return fixtures, nil
}
