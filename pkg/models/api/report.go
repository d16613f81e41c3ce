package api

type PeriodStat struct {
	Period          string `json:"period"`
	Count           int    `json:"count"`
	UniqueCustomers int    `json:"uniqueCustomers"`
	Total           string `json:"total"`
}

type CustomerCounts struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}
