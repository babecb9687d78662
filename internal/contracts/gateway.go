package contracts

import "context"

// Gateway fetches everything the dashboard displays.
// Every method returns *GatewayError on failure.
// ⭐ SSOT: data gateway interface
type Gateway interface {
	ListCompanies(ctx context.Context) ([]Company, error)
	GetCompany(ctx context.Context, symbol string) (*Company, error)
	GetHistory(ctx context.Context, symbol string, days int) ([]PricePoint, error)
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
	GetPrediction(ctx context.Context, symbol string) (*Prediction, error)
	GetPredictionHistory(ctx context.Context, symbol string) ([]Prediction, error)
	Health(ctx context.Context) error
}

// Gateway operation names used in GatewayError.Op and logs
const (
	OpListCompanies        = "list_companies"
	OpGetCompany           = "get_company"
	OpGetHistory           = "get_history"
	OpGetQuote             = "get_quote"
	OpGetPrediction        = "get_prediction"
	OpGetPredictionHistory = "get_prediction_history"
	OpHealth               = "health"
)
