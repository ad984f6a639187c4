package handler

// Request and response payloads. Field names follow the wire contract of the
// mobile client, so they stay camelCase.

type registerRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token            string `json:"token"`
	UserID           string `json:"userId"`
	ExpiresIn        int64  `json:"expiresIn"`
	RefreshToken     string `json:"refreshToken"`
	RefreshExpiresIn int64  `json:"refreshExpiresIn"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type forgotPasswordResponse struct {
	Message   string  `json:"message"`
	ResetCode *string `json:"resetCode,omitempty"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"       validate:"required"`
	Code        string `json:"code"        validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type stockRequest struct {
	Symbol   string  `json:"symbol" validate:"required"`
	Shares   float64 `json:"shares"`
	BuyPrice float64 `json:"buyPrice"`
	BuyDate  string  `json:"buyDate" validate:"required"`
	Notes    *string `json:"notes"`
}

type stockResponse struct {
	ID       string  `json:"id"`
	Symbol   string  `json:"symbol"`
	Shares   float64 `json:"shares"`
	BuyPrice float64 `json:"buyPrice"`
	BuyDate  string  `json:"buyDate"`
	Notes    *string `json:"notes"`
}

type watchlistItemRequest struct {
	Symbol string `json:"symbol" validate:"required"`
}

type watchlistItemResponse struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
}

type researchNoteRequest struct {
	Symbol         string   `json:"symbol" validate:"required"`
	Title          *string  `json:"title"`
	Thesis         string   `json:"thesis" validate:"required"`
	Risks          *string  `json:"risks"`
	Catalysts      *string  `json:"catalysts"`
	ReferenceLinks []string `json:"referenceLinks"`
}

type researchNoteResponse struct {
	ID             string   `json:"id"`
	Symbol         string   `json:"symbol"`
	Title          *string  `json:"title"`
	Thesis         string   `json:"thesis"`
	Risks          *string  `json:"risks"`
	Catalysts      *string  `json:"catalysts"`
	ReferenceLinks []string `json:"referenceLinks"`
}

type targetRequest struct {
	Symbol      string  `json:"symbol"   validate:"required"`
	Scenario    string  `json:"scenario" validate:"required"`
	TargetPrice float64 `json:"targetPrice"`
	TargetDate  *string `json:"targetDate"`
	Rationale   *string `json:"rationale"`
}

type targetResponse struct {
	ID          string  `json:"id"`
	Symbol      string  `json:"symbol"`
	Scenario    string  `json:"scenario"`
	TargetPrice float64 `json:"targetPrice"`
	TargetDate  *string `json:"targetDate"`
	Rationale   *string `json:"rationale"`
}

type allocationItemResponse struct {
	Symbol   string  `json:"symbol"`
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

type portfolioSummaryResponse struct {
	BaseCurrency  string                   `json:"baseCurrency"`
	TotalValue    float64                  `json:"totalValue"`
	TotalCost     float64                  `json:"totalCost"`
	UnrealizedPnl float64                  `json:"unrealizedPnl"`
	RealizedPnl   float64                  `json:"realizedPnl"`
	Allocation    []allocationItemResponse `json:"allocation"`
}

type performancePointResponse struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type portfolioPerformanceResponse struct {
	BaseCurrency string                     `json:"baseCurrency"`
	Points       []performancePointResponse `json:"points"`
}

type pnlBySymbolResponse struct {
	Symbol        string  `json:"symbol"`
	Currency      string  `json:"currency"`
	RealizedPnl   float64 `json:"realizedPnl"`
	UnrealizedPnl float64 `json:"unrealizedPnl"`
}

type pnlResponse struct {
	BaseCurrency string                `json:"baseCurrency"`
	Items        []pnlBySymbolResponse `json:"items"`
}

type transactionResponse struct {
	ID           string   `json:"id"`
	AccountID    string   `json:"accountId"`
	InstrumentID string   `json:"instrumentId"`
	Type         string   `json:"type"`
	Quantity     *float64 `json:"quantity"`
	Price        *float64 `json:"price"`
	Currency     string   `json:"currency"`
	TradeDate    string   `json:"tradeDate"`
	SettleDate   *string  `json:"settleDate"`
	Fees         *float64 `json:"fees"`
}

type lotResponse struct {
	ID                string   `json:"id"`
	AccountID         string   `json:"accountId"`
	InstrumentID      string   `json:"instrumentId"`
	OpenDate          string   `json:"openDate"`
	CloseDate         *string  `json:"closeDate"`
	OpenQuantity      float64  `json:"openQuantity"`
	RemainingQuantity float64  `json:"remainingQuantity"`
	OpenPrice         float64  `json:"openPrice"`
	Currency          string   `json:"currency"`
	RealizedPnl       *float64 `json:"realizedPnl"`
	Status            string   `json:"status"`
}

type quoteResponse struct {
	Symbol   string  `json:"symbol"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	AsOf     string  `json:"asOf"`
}

type priceBarResponse struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume *int64  `json:"volume"`
}

type historyResponse struct {
	Symbol   string             `json:"symbol"`
	Currency string             `json:"currency"`
	Bars     []priceBarResponse `json:"bars"`
}

type searchResultResponse struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Currency string `json:"currency"`
	Conid    string `json:"conid"`
}

type fxRateResponse struct {
	Base  string  `json:"base"`
	Quote string  `json:"quote"`
	Rate  float64 `json:"rate"`
	Date  string  `json:"date"`
}

type brokerConnectionResponse struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
	Status   string `json:"status"`
}

type brokerHoldingResponse struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
	Currency string  `json:"currency"`
}

type brokerSyncResponse struct {
	RunID  string `json:"runId"`
	Status string `json:"status"`
}

type csvImportItemResponse struct {
	Line     int      `json:"line"`
	Symbol   string   `json:"symbol"`
	Shares   *float64 `json:"shares"`
	BuyPrice *float64 `json:"buyPrice"`
	BuyDate  *string  `json:"buyDate"`
	Notes    *string  `json:"notes"`
}

type csvImportErrorResponse struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type csvImportPreviewResponse struct {
	Provider string                   `json:"provider"`
	Items    []csvImportItemResponse  `json:"items"`
	Errors   []csvImportErrorResponse `json:"errors"`
}

type csvImportCommitResponse struct {
	Provider string                   `json:"provider"`
	Inserted []stockResponse          `json:"inserted"`
	Updated  []stockResponse          `json:"updated"`
	Errors   []csvImportErrorResponse `json:"errors"`
}
