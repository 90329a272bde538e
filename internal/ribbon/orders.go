package ribbon

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/ribbon-tracker/internal/fragment"
)

var (
	reOrderID     = regexp.MustCompile(`\d{3}-\d{7}-\d{7}`)
	reTableHeader = regexp.MustCompile(`(?i)quantity\s+product details`)
	rePackSize    = regexp.MustCompile(`(\d+)x\b`)
	reColourAsk   = regexp.MustCompile(`(?i)type your\b.*\bribbon colou?r choice here`)
)

const (
	packMarker     = "Pack of"
	currencySymbol = "£$€"
)

// reservedWords never appear in the second line of a colour answer; when they
// do the line is page furniture, not part of the colour.
var reservedWords = []string{"VAT", "PAGE", "TOTAL"}

type scanState int

const (
	stateScanning scanState = iota
	stateLocatingOrderID
	stateLocatingItemTableHeader
	stateScanningItemTable
	stateDone
)

func (s scanState) String() string {
	switch s {
	case stateScanning:
		return "Scanning"
	case stateLocatingOrderID:
		return "LocatingOrderId"
	case stateLocatingItemTableHeader:
		return "LocatingItemTableHeader"
	case stateScanningItemTable:
		return "ScanningItemTable"
	case stateDone:
		return "Done"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// orderTransitions is the full transition table of the order-export scan.
var orderTransitions = map[scanState][]scanState{
	stateScanning:                {stateLocatingOrderID, stateDone},
	stateLocatingOrderID:         {stateLocatingItemTableHeader},
	stateLocatingItemTableHeader: {stateScanningItemTable, stateScanning},
	stateScanningItemTable:       {stateScanning},
}

func canTransition(from, to scanState) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// orderBlock is the span of fragments belonging to one customer order.
type orderBlock struct {
	marker  int
	orderID string
	header  int
	table   []string
	// tableStart is the stream index of table[0].
	tableStart int
}

type orderScanner struct {
	stream fragment.Stream
	limits Limits
	logger *slog.Logger

	pos     int
	block   orderBlock
	headers map[int]struct{}
	items   []LineItem
}

// ExtractOrderExport scans a marketplace order export and returns one line
// item per ordered product that carries a ribbon colour answer.
func ExtractOrderExport(s fragment.Stream, limits Limits, logger *slog.Logger) []LineItem {
	if logger == nil {
		logger = slog.Default()
	}
	sc := &orderScanner{
		stream:  s,
		limits:  limits.WithDefaults(),
		logger:  logger,
		headers: map[int]struct{}{},
	}
	sc.run()
	return sc.items
}

func (sc *orderScanner) run() {
	handlers := map[scanState]func() scanState{
		stateScanning:                sc.scan,
		stateLocatingOrderID:         sc.locateOrderID,
		stateLocatingItemTableHeader: sc.locateHeader,
		stateScanningItemTable:       sc.scanTable,
	}
	state := stateScanning
	for state != stateDone {
		next := handlers[state]()
		if !canTransition(state, next) {
			sc.logger.Error("order scan: illegal transition", "from", state, "to", next, "document", sc.stream.Name())
			return
		}
		state = next
	}
}

func (sc *orderScanner) scan() scanState {
	for i := sc.pos; i < sc.stream.Len(); i++ {
		if strings.Contains(strings.ToLower(sc.stream.Text(i)), orderMarker) {
			sc.block = orderBlock{marker: i, orderID: UnknownOrderID, header: -1}
			return stateLocatingOrderID
		}
	}
	return stateDone
}

func (sc *orderScanner) locateOrderID() scanState {
	if id, ok := findOrderID(sc.stream.Window(sc.block.marker, sc.limits.OrderIDLookahead)); ok {
		sc.block.orderID = id
	} else {
		sc.logger.Debug("order id not found", "document", sc.stream.Name(), "marker", sc.block.marker)
	}
	return stateLocatingItemTableHeader
}

func (sc *orderScanner) locateHeader() scanState {
	sc.pos = sc.block.marker + 1
	header, ok := findTableHeader(sc.stream.Window(sc.block.marker, sc.limits.HeaderLookahead))
	if !ok {
		sc.logger.Debug("item table header not found; skipping order",
			"document", sc.stream.Name(), "order_id", sc.block.orderID, "marker", sc.block.marker)
		return stateScanning
	}
	if _, seen := sc.headers[header]; seen {
		return stateScanning
	}
	sc.headers[header] = struct{}{}
	sc.block.header = header
	return stateScanningItemTable
}

func (sc *orderScanner) scanTable() scanState {
	start := sc.block.header + 1
	table := collectItemTable(sc.stream.Slice(start, sc.stream.Len()))
	sc.block.table = table
	sc.block.tableStart = start

	if !hasColourPrompt(table) {
		sc.logger.Debug("order has no ribbon colour prompt; skipping",
			"document", sc.stream.Name(), "order_id", sc.block.orderID)
		return stateScanning
	}
	sc.items = append(sc.items, extractTableItems(sc.block, sc.limits, sc.logger)...)
	return stateScanning
}

// findOrderID returns the first order identifier in the window.
func findOrderID(window []fragment.Fragment) (string, bool) {
	for _, f := range window {
		if m := reOrderID.FindString(f.Text); m != "" {
			return m, true
		}
	}
	return "", false
}

// findTableHeader returns the stream index of the first item table header in the window.
func findTableHeader(window []fragment.Fragment) (int, bool) {
	for _, f := range window {
		if reTableHeader.MatchString(f.Text) {
			return f.Index, true
		}
	}
	return -1, false
}

// collectItemTable returns the texts following a table header up to, not
// including, the next fragment carrying an order identifier.
func collectItemTable(rest []fragment.Fragment) []string {
	var out []string
	for _, f := range rest {
		if reOrderID.MatchString(f.Text) {
			break
		}
		out = append(out, f.Text)
	}
	return out
}

func hasColourPrompt(table []string) bool {
	for _, t := range table {
		if reColourAsk.MatchString(t) {
			return true
		}
	}
	return false
}

// extractTableItems walks the item table in (quantity, description, price)
// windows. A matched window consumes three fragments, anything else one.
func extractTableItems(b orderBlock, limits Limits, logger *slog.Logger) []LineItem {
	var items []LineItem
	t := b.table
	i := 0
	for i+2 < len(t) {
		qty, ok := itemStart(t, i)
		if !ok {
			i++
			continue
		}
		end := nextBoundary(t, i+3)
		if strings.Contains(t[i+1], packMarker) {
			if pack, found := packSize(t[i+3 : end]); found {
				qty *= pack
			}
		}
		colour, found := colourAnswer(t, i+3, end, limits.ContinuationMaxWords)
		switch {
		case !found:
			logger.Debug("item without ribbon colour; skipping", "order_id", b.orderID, "description", t[i+1])
		case qty <= 0:
			logger.Debug("item resolved to zero quantity; skipping", "order_id", b.orderID, "colour", colour)
		default:
			items = append(items, LineItem{
				Colour:   colour,
				Quantity: qty,
				OrderID:  b.orderID,
				Position: b.tableStart + i,
			})
		}
		i += 3
	}
	return items
}

// itemStart reports whether t[i:i+3] is a (quantity, description, price)
// window and returns the parsed quantity.
func itemStart(t []string, i int) (int, bool) {
	if i+2 >= len(t) {
		return 0, false
	}
	qty, err := strconv.Atoi(strings.TrimSpace(t[i]))
	if err != nil || qty <= 0 {
		return 0, false
	}
	if strings.TrimSpace(t[i+1]) == "" {
		return 0, false
	}
	if !strings.ContainsAny(t[i+2], currencySymbol) {
		return 0, false
	}
	return qty, true
}

// nextBoundary returns the index of the next item window or order identifier
// at or after from, or len(t) when there is none.
func nextBoundary(t []string, from int) int {
	for j := from; j < len(t); j++ {
		if _, ok := itemStart(t, j); ok {
			return j
		}
		if reOrderID.MatchString(t[j]) {
			return j
		}
	}
	return len(t)
}

// packSize looks for an "<n>x" token on a "::" line. When several lines
// carry one the last wins.
func packSize(region []string) (int, bool) {
	size, found := 0, false
	for _, line := range region {
		if !strings.Contains(line, "::") {
			continue
		}
		m := rePackSize.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		size, found = n, true
	}
	return size, found
}

// colourAnswer finds the first colour prompt in t[from:end] and returns the
// normalized answer, joined with a short continuation line when present.
func colourAnswer(t []string, from, end, maxWords int) (string, bool) {
	for j := from; j < end; j++ {
		line := t[j]
		if !reColourAsk.MatchString(line) {
			continue
		}
		answer := answerText(line)
		if j+1 < len(t) && isContinuation(t[j+1], maxWords) {
			answer += " " + strings.TrimSpace(t[j+1])
		}
		colour := NormalizeColour(answer)
		if colour == "" {
			return "", false
		}
		return colour, true
	}
	return "", false
}

func answerText(line string) string {
	if k := strings.LastIndex(line, "::"); k >= 0 {
		return strings.TrimSpace(line[k+2:])
	}
	if k := strings.LastIndex(line, ":"); k >= 0 {
		return strings.TrimSpace(line[k+1:])
	}
	return strings.TrimSpace(line)
}

func isContinuation(next string, maxWords int) bool {
	next = strings.TrimSpace(next)
	if next == "" || strings.Contains(next, ":") {
		return false
	}
	if len(strings.Fields(next)) > maxWords {
		return false
	}
	if _, err := strconv.Atoi(next); err == nil {
		return false
	}
	upper := strings.ToUpper(next)
	for _, w := range reservedWords {
		if strings.Contains(upper, w) {
			return false
		}
	}
	return true
}
