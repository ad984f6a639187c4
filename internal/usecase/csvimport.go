package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/stockplan/stockplan-api/internal/model"
)

// CSVImportUsecase parses broker CSV exports into position rows. Preview is a
// pure parse; Commit applies the parsed rows to the user's stocks and
// watchlist and records the import against the broker connection.
type CSVImportUsecase interface {
	Preview(csv, provider string) (*CSVImportPreview, error)
	Commit(ctx context.Context, userID bson.ObjectID, csv, provider string) (*CSVImportCommit, error)
}

// CSVImportItem is one parsed data row. Optional columns stay nil when the
// cell is absent or blank.
type CSVImportItem struct {
	Line     int
	Symbol   string
	Shares   *float64
	BuyPrice *float64
	BuyDate  *string
	Notes    *string
}

// CSVImportError is a per-row failure, keyed by the CSV line number.
type CSVImportError struct {
	Line    int
	Message string
}

// CSVImportPreview is the result of parsing without applying.
type CSVImportPreview struct {
	Provider string
	Items    []CSVImportItem
	Errors   []CSVImportError
}

// CSVImportCommit reports which rows were inserted, updated, or rejected.
type CSVImportCommit struct {
	Provider string
	Inserted []*model.Stock
	Updated  []*model.Stock
	Errors   []CSVImportError
}

var (
	ErrEmptyCSV            = errors.New("CSV body is empty")
	ErrMissingCSVHeader    = errors.New("CSV must include a header row")
	ErrMissingSymbolColumn = errors.New("CSV header must include a symbol column (symbol/ticker)")
)

var (
	symbolHeaderAliases   = []string{"symbol", "ticker", "sym"}
	sharesHeaderAliases   = []string{"shares", "share", "quantity", "qty"}
	buyPriceHeaderAliases = []string{"buyprice", "averagecost", "avgcost", "costbasis", "purchaseprice"}
	buyDateHeaderAliases  = []string{"buydate", "purchasedate", "purchase", "opened", "opendate"}
	notesHeaderAliases    = []string{"notes", "note", "memo", "comment", "comments"}
)

type csvImportUsecase struct {
	stockUC     StockUsecase
	watchlistUC WatchlistUsecase
	brokerUC    BrokerUsecase
}

// NewCSVImportUsecase creates a new instance of CSVImportUsecase.
func NewCSVImportUsecase(
	stockUC StockUsecase,
	watchlistUC WatchlistUsecase,
	brokerUC BrokerUsecase,
) CSVImportUsecase {
	return &csvImportUsecase{
		stockUC:     stockUC,
		watchlistUC: watchlistUC,
		brokerUC:    brokerUC,
	}
}

func (u *csvImportUsecase) Preview(csv, provider string) (*CSVImportPreview, error) {
	normalizedProvider, err := NormalizeProvider(provider)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(csv)
	if trimmed == "" {
		return nil, ErrEmptyCSV
	}

	var lines []string
	for _, line := range strings.FieldsFunc(trimmed, func(r rune) bool { return r == '\n' || r == '\r' }) {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCSV
	}

	// Spreadsheet exports sometimes lead with an Excel "sep=" directive.
	headerIndex := 0
	if strings.HasPrefix(strings.ToLower(lines[0]), "sep=") {
		headerIndex = 1
	}
	if headerIndex >= len(lines) {
		return nil, ErrMissingCSVHeader
	}

	headerLine := lines[headerIndex]
	delimiter := inferDelimiter(headerLine)

	headerFields := splitCSVLine(headerLine, delimiter)
	for i, field := range headerFields {
		headerFields[i] = normalizeHeaderField(field)
	}

	symbolIndex := headerIndexOf(headerFields, symbolHeaderAliases)
	if symbolIndex < 0 {
		return nil, ErrMissingSymbolColumn
	}

	sharesIndex := headerIndexOf(headerFields, sharesHeaderAliases)
	buyPriceIndex := headerIndexOf(headerFields, buyPriceHeaderAliases)
	buyDateIndex := headerIndexOf(headerFields, buyDateHeaderAliases)
	notesIndex := headerIndexOf(headerFields, notesHeaderAliases)

	preview := &CSVImportPreview{Provider: normalizedProvider}
	for offset, rawLine := range lines[headerIndex+1:] {
		lineNumber := headerIndex + 2 + offset
		fields := splitCSVLine(rawLine, delimiter)

		symbol := strings.ToUpper(strings.TrimSpace(csvField(fields, symbolIndex)))
		if symbol == "" {
			preview.Errors = append(preview.Errors, CSVImportError{Line: lineNumber, Message: "Missing symbol."})
			continue
		}

		preview.Items = append(preview.Items, CSVImportItem{
			Line:     lineNumber,
			Symbol:   symbol,
			Shares:   parseCSVNumber(csvField(fields, sharesIndex)),
			BuyPrice: parseCSVNumber(csvField(fields, buyPriceIndex)),
			BuyDate:  parseCSVString(csvField(fields, buyDateIndex)),
			Notes:    parseCSVString(csvField(fields, notesIndex)),
		})
	}

	return preview, nil
}

func (u *csvImportUsecase) Commit(
	ctx context.Context,
	userID bson.ObjectID,
	csv, provider string,
) (*CSVImportCommit, error) {
	preview, err := u.Preview(csv, provider)
	if err != nil {
		return nil, err
	}

	broker, err := u.brokerUC.RecordCSVImport(ctx, userID, provider)
	if err != nil {
		return nil, err
	}

	commit := &CSVImportCommit{
		Provider: broker.Provider,
		Errors:   preview.Errors,
	}

	for _, item := range preview.Items {
		// Rows without any position data are watchlist entries.
		if item.Shares == nil && item.BuyPrice == nil && item.BuyDate == nil {
			if _, err := u.watchlistUC.Add(ctx, userID, item.Symbol); err != nil {
				commit.Errors = append(commit.Errors, CSVImportError{
					Line:    item.Line,
					Message: "Failed to import watchlist row.",
				})
			}
			continue
		}

		existing, err := u.stockUC.GetBySymbol(ctx, userID, item.Symbol)
		if err != nil && !errors.Is(err, ErrStockNotFound) {
			return nil, err
		}

		params, rowErr := mergeImportRow(item, existing)
		if rowErr != nil {
			commit.Errors = append(commit.Errors, *rowErr)
			continue
		}

		if existing != nil {
			stock, err := u.stockUC.Update(ctx, existing.ID.Hex(), userID, params)
			if err != nil {
				commit.Errors = append(commit.Errors, CSVImportError{Line: item.Line, Message: importErrorMessage(err)})
				continue
			}
			commit.Updated = append(commit.Updated, stock)
		} else {
			stock, err := u.stockUC.Create(ctx, userID, params)
			if err != nil {
				commit.Errors = append(commit.Errors, CSVImportError{Line: item.Line, Message: importErrorMessage(err)})
				continue
			}
			commit.Inserted = append(commit.Inserted, stock)
		}
	}

	return commit, nil
}

// mergeImportRow fills the gaps of a parsed row from an existing position, if
// any, and reports which required field is still missing.
func mergeImportRow(item CSVImportItem, existing *model.Stock) (StockParams, *CSVImportError) {
	var params StockParams
	params.Symbol = item.Symbol

	switch {
	case item.Shares != nil:
		params.Shares = *item.Shares
	case existing != nil:
		params.Shares = existing.Shares
	default:
		return params, &CSVImportError{Line: item.Line, Message: "Missing shares (quantity)."}
	}

	switch {
	case item.BuyPrice != nil:
		params.BuyPrice = *item.BuyPrice
	case existing != nil:
		params.BuyPrice = existing.BuyPrice
	default:
		return params, &CSVImportError{Line: item.Line, Message: "Missing buyPrice (average_cost)."}
	}

	if item.BuyDate != nil {
		if normalized := NormalizeImportDate(*item.BuyDate); normalized != "" {
			params.BuyDate = normalized
		}
	}
	if params.BuyDate == "" {
		if existing == nil {
			return params, &CSVImportError{Line: item.Line, Message: "Missing or invalid buyDate. Expected YYYY-MM-DD."}
		}
		params.BuyDate = existing.BuyDate.UTC().Format(BuyDateLayout)
	}

	if item.Notes != nil {
		params.Notes = item.Notes
	} else if existing != nil {
		params.Notes = existing.Notes
	}

	return params, nil
}

func importErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidSymbol), errors.Is(err, ErrInvalidBuyDate), errors.Is(err, ErrStockNotFound):
		return err.Error()
	default:
		return "Failed to import row."
	}
}

func inferDelimiter(headerLine string) rune {
	if strings.ContainsRune(headerLine, '\t') && !strings.ContainsRune(headerLine, ',') {
		return '\t'
	}
	if strings.ContainsRune(headerLine, ';') && !strings.ContainsRune(headerLine, ',') {
		return ';'
	}
	return ','
}

// normalizeHeaderField strips a BOM and every non-alphanumeric rune so that
// "Buy Price", "buy_price", and "BuyPrice" all compare equal.
func normalizeHeaderField(raw string) string {
	var out strings.Builder
	for _, r := range strings.ReplaceAll(raw, "\uFEFF", "") {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out.WriteRune(unicode.ToLower(r))
		}
	}
	return out.String()
}

func headerIndexOf(headers []string, aliases []string) int {
	for i, header := range headers {
		for _, alias := range aliases {
			if header == alias {
				return i
			}
		}
	}
	return -1
}

func csvField(fields []string, index int) string {
	if index < 0 || index >= len(fields) {
		return ""
	}
	return fields[index]
}

func parseCSVString(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// parseCSVNumber accepts thousands separators ("1,234.5").
func parseCSVNumber(raw string) *float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", ""), 64)
	if err != nil {
		return nil
	}
	return &value
}

// NormalizeImportDate coerces the date formats seen in broker exports into
// YYYY-MM-DD. It returns "" when no format matches.
func NormalizeImportDate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	// Drop any time component.
	dateOnly := trimmed
	if i := strings.IndexAny(trimmed, "T "); i > 0 {
		dateOnly = trimmed[:i]
	}

	if len(dateOnly) == 10 && dateOnly[4] == '-' {
		if parsed, err := time.ParseInLocation(BuyDateLayout, dateOnly, time.UTC); err == nil {
			return parsed.Format(BuyDateLayout)
		}
	}

	for _, layout := range []string{"2006/01/02", "01/02/2006", "1/2/2006", "01-02-2006", "1-2-2006"} {
		if parsed, err := time.ParseInLocation(layout, dateOnly, time.UTC); err == nil {
			return parsed.Format(BuyDateLayout)
		}
	}

	if len(dateOnly) == 8 {
		if parsed, err := time.ParseInLocation("20060102", dateOnly, time.UTC); err == nil {
			return parsed.Format(BuyDateLayout)
		}
	}

	return ""
}

// splitCSVLine splits one line on the delimiter, honoring double-quoted
// fields with "" escapes.
func splitCSVLine(line string, delimiter rune) []string {
	var fields []string
	var current strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '"' {
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
			continue
		}

		if r == delimiter && !inQuotes {
			fields = append(fields, current.String())
			current.Reset()
			continue
		}

		current.WriteRune(r)
	}
	fields = append(fields, current.String())

	for i, field := range fields {
		fields[i] = strings.TrimSpace(field)
	}

	return fields
}
