package dto

const GoldAPIStatusSuccess = "success"

type GoldPriceDetail struct {
	Buy  string `json:"buy"`
	Sell string `json:"sell"`
}

// ThaiGoldResponse is the payload of the Thai gold association price feed.
type ThaiGoldResponse struct {
	Status   string `json:"status"`
	Response struct {
		Date       string `json:"date"`
		UpdateTime string `json:"update_time"`
		Price      struct {
			Gold    GoldPriceDetail `json:"gold"`
			GoldBar GoldPriceDetail `json:"gold_bar"`
			Change  struct {
				ComparePrevious  string `json:"compare_previous"`
				CompareYesterday string `json:"compare_yesterday"`
			} `json:"change"`
		} `json:"price"`
	} `json:"response"`
}
