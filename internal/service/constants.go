package service

const (
	// restockBuffer is applied to the forecast demand of a period when recommending a reorder
	restockBuffer = "1.2"

	failureReasonInvalidArgument  = "invalid_argument"
	failureReasonStorage          = "storage"
	failureReasonInsufficientData = "insufficient_data"

	operationSalesForecast   = "sales_forecast"
	operationRestockForecast = "restock_forecast"
)
