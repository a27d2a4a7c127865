package models

// Health service names reported over gRPC
const (
	ServiceMarketBuzz   = "market-buzz"
	ServiceStockSource  = "stock-source"
	ServiceSocialSource = "social-source"
)
