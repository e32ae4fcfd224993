package evaluator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"autofair/server/internal/models"
)

var (
	intRegexp        = regexp.MustCompile(`\d+`)
	yearRegexp       = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	engineSizeRegexp = regexp.MustCompile(`\b([0-9])\.([0-9])\b`)
	// Three-digit engine codes like "320d" or "118i" encode displacement in
	// the last two digits.
	engineCodeRegexp = regexp.MustCompile(`\b[1-8](\d\d)[di]\b`)
	powerRegexp      = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:kw|ks|hp|ps)?`)
)

// fuelSynonyms maps marketplace fuel spellings (local and English) to
// canonical fuel types.
var fuelSynonyms = map[string]string{
	"dizel":      "diesel",
	"diesel":     "diesel",
	"benzin":     "petrol",
	"petrol":     "petrol",
	"gasoline":   "petrol",
	"hibrid":     "hybrid",
	"hybrid":     "hybrid",
	"elektro":    "electric",
	"electric":   "electric",
	"električni": "electric",
	"tng":        "lpg",
	"plin":       "lpg",
	"lpg":        "lpg",
}

var transmissionSynonyms = map[string]string{
	"automatski": "automatic",
	"automatik":  "automatic",
	"automatic":  "automatic",
	"manuelni":   "manual",
	"manualni":   "manual",
	"manual":     "manual",
	"mehanički":  "manual",
}

var bodyTypeSynonyms = map[string]string{
	"limuzina":    "sedan",
	"sedan":       "sedan",
	"hečbek":      "hatchback",
	"hecbek":      "hatchback",
	"hatchback":   "hatchback",
	"suv":         "suv",
	"džip":        "suv",
	"karavan":     "wagon",
	"wagon":       "wagon",
	"kupe":        "coupe",
	"coupe":       "coupe",
	"kabriolet":   "convertible",
	"convertible": "convertible",
	"monovolumen": "minivan",
	"minivan":     "minivan",
	"pickup":      "pickup",
}

// dieselMarkers and petrolMarkers are engine-code tokens commonly embedded in
// advert titles.
var dieselMarkers = []string{"tdi", "hdi", "cdi", "cdti", "dci", "crdi", "jtd", "tdci", "d4d", "bluehdi", "multijet"}
var petrolMarkers = []string{"tsi", "tfsi", "fsi", "mpi", "gti", "vti", "vtec"}

// knownKeywords are equipment/status phrases worth surfacing to the caller.
var knownKeywords = []string{
	"registrovan", "klima", "navigacija", "koža", "servisna knjiga",
	"alu felne", "parking senzori", "tempomat", "prvi vlasnik", "garažiran",
}

// Extractor normalizes raw scraped adverts into canonical listings.
type Extractor struct {
	logger *logrus.Logger
}

func NewExtractor(logger *logrus.Logger) *Extractor {
	if logger == nil {
		logger = logrus.New()
	}
	return &Extractor{logger: logger}
}

// Extract converts one raw listing into canonical form. It returns false when
// year, mileage or price cannot be parsed; such listings are unusable for
// comparison and are dropped by the caller.
func (e *Extractor) Extract(raw models.RawListing) (*models.Listing, bool) {
	title := collapseSpace(raw.Title)

	year, yearOK := parseNumber(raw.Year)
	if !yearOK {
		// Adverts often carry the year only in the title.
		if m := yearRegexp.FindString(title); m != "" {
			year, _ = strconv.Atoi(m)
			yearOK = true
		}
	}
	mileage, mileageOK := parseNumber(raw.Mileage)
	price, priceOK := parseNumber(raw.Price)

	if title == "" || !yearOK || !mileageOK || !priceOK {
		return nil, false
	}

	l := &models.Listing{
		Title:   title,
		Year:    year,
		Mileage: mileage,
		Price:   price,
	}

	haystack := strings.ToLower(title + " " + raw.Engine + " " + raw.FuelType)

	if ft, ok := lookupSynonym(fuelSynonyms, raw.FuelType); ok {
		l.FuelType = &ft
		l.EngineType = &ft
	} else if et, ok := engineTypeFromText(haystack); ok {
		l.EngineType = &et
	}

	if size, ok := engineSizeFromText(raw.EngineSize, title); ok {
		l.EngineSize = &size
	}
	if tr, ok := lookupSynonym(transmissionSynonyms, raw.Transmission); ok {
		l.Transmission = &tr
	} else if tr, ok := transmissionFromText(haystack); ok {
		l.Transmission = &tr
	}
	if bt, ok := lookupSynonym(bodyTypeSynonyms, raw.BodyType); ok {
		l.BodyType = &bt
	} else if bt, ok := bodyTypeFromText(strings.ToLower(title + " " + raw.BodyType)); ok {
		l.BodyType = &bt
	}
	if p, ok := parsePower(raw.Power); ok {
		l.Power = &p
	}

	setOptional(&l.Color, strings.ToLower(collapseSpace(raw.Color)))
	setOptional(&l.Doors, collapseSpace(raw.Doors))
	setOptional(&l.Seats, collapseSpace(raw.Seats))
	setOptional(&l.SellerType, collapseSpace(raw.SellerType))
	setOptional(&l.SellerInfo, collapseSpace(raw.SellerInfo))
	setOptional(&l.City, collapseSpace(raw.City))
	setOptional(&l.URL, strings.TrimSpace(raw.URL))

	l.Keywords = extractKeywords(strings.ToLower(title))

	return l, true
}

// ExtractBatch converts a batch of raw listings, dropping the unusable ones.
func (e *Extractor) ExtractBatch(raw []models.RawListing) []*models.Listing {
	out := make([]*models.Listing, 0, len(raw))
	dropped := 0
	for _, r := range raw {
		l, ok := e.Extract(r)
		if !ok {
			dropped++
			e.logger.WithField("title", r.Title).Warn("Dropping listing with unparseable year/mileage/price")
			continue
		}
		out = append(out, l)
	}
	if dropped > 0 {
		e.logger.WithFields(logrus.Fields{
			"total":   len(raw),
			"dropped": dropped,
		}).Info("Extracted listings")
	}
	return out
}

// InputProfile derives the canonical attributes of the input vehicle from its
// title, so that the scorer compares like with like. Attributes that cannot
// be inferred stay absent and are never penalized.
func (e *Extractor) InputProfile(v models.InputVehicle) *models.Listing {
	p := &models.Listing{
		Title:   v.Title,
		Year:    v.Year,
		Mileage: v.Mileage,
		Price:   v.Price,
	}
	lower := strings.ToLower(v.Title)
	if et, ok := engineTypeFromText(lower); ok {
		p.EngineType = &et
	}
	if size, ok := engineSizeFromText("", v.Title); ok {
		p.EngineSize = &size
	}
	if tr, ok := transmissionFromText(lower); ok {
		p.Transmission = &tr
	}
	if bt, ok := bodyTypeFromText(lower); ok {
		p.BodyType = &bt
	}
	return p
}

// parseNumber strips currency/unit noise and thousands separators, then takes
// the first run of digits.
func parseNumber(s string) (int, bool) {
	s = strings.NewReplacer(".", "", ",", "", "€", "", "km", "", "Km", "", "KM", "").Replace(s)
	m := intRegexp.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

func lookupSynonym(table map[string]string, value string) (string, bool) {
	v, ok := table[strings.ToLower(strings.TrimSpace(value))]
	return v, ok
}

// fuelWords is fuelSynonyms in a fixed scan order, so text mentioning more
// than one fuel always resolves the same way.
var fuelWords = []string{
	"dizel", "diesel", "benzin", "petrol", "gasoline",
	"hibrid", "hybrid", "elektro", "electric", "električni", "tng", "plin", "lpg",
}

func engineTypeFromText(text string) (string, bool) {
	for _, word := range fuelWords {
		if containsToken(text, word) {
			return fuelSynonyms[word], true
		}
	}
	for _, m := range dieselMarkers {
		if containsToken(text, m) {
			return "diesel", true
		}
	}
	for _, m := range petrolMarkers {
		if containsToken(text, m) {
			return "petrol", true
		}
	}
	// Engine codes ending in d/i ("320d", "118i").
	if m := engineCodeRegexp.FindString(text); m != "" {
		if strings.HasSuffix(m, "d") {
			return "diesel", true
		}
		return "petrol", true
	}
	if strings.Contains(text, "tesla") {
		return "electric", true
	}
	return "", false
}

func engineSizeFromText(field, title string) (float64, bool) {
	if m := engineSizeRegexp.FindString(field); m != "" {
		size, err := strconv.ParseFloat(m, 64)
		return size, err == nil
	}
	if m := engineSizeRegexp.FindString(title); m != "" {
		size, err := strconv.ParseFloat(m, 64)
		return size, err == nil
	}
	if m := engineCodeRegexp.FindStringSubmatch(strings.ToLower(title)); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n >= 10 && n <= 60 {
			return float64(n) / 10, true
		}
	}
	return 0, false
}

var transmissionWords = []string{"automatski", "automatik", "automatic", "manuelni", "manualni", "manual", "mehanički"}

func transmissionFromText(text string) (string, bool) {
	for _, word := range transmissionWords {
		if containsToken(text, word) {
			return transmissionSynonyms[word], true
		}
	}
	return "", false
}

var bodyTypeWords = []string{
	"limuzina", "sedan", "hečbek", "hecbek", "hatchback", "suv", "džip",
	"karavan", "wagon", "kupe", "coupe", "kabriolet", "convertible",
	"monovolumen", "minivan", "pickup",
}

func bodyTypeFromText(text string) (string, bool) {
	for _, word := range bodyTypeWords {
		if containsToken(text, word) {
			return bodyTypeSynonyms[word], true
		}
	}
	return "", false
}

// parsePower reads a numeric power figure, tolerating kW/KS/HP suffixes.
func parsePower(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	m := powerRegexp.FindStringSubmatch(s)
	if m == nil || m[1] == "" {
		return 0, false
	}
	p, err := strconv.ParseFloat(m[1], 64)
	if err != nil || p <= 0 {
		return 0, false
	}
	return p, true
}

func extractKeywords(title string) []string {
	var found []string
	for _, kw := range knownKeywords {
		if strings.Contains(title, kw) {
			found = append(found, kw)
		}
	}
	return found
}

func setOptional(dst **string, value string) {
	if value != "" {
		*dst = &value
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// containsToken reports whether text contains word as a whole token rather
// than as a substring of a longer word.
func containsToken(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		i += idx
		before := i == 0 || !isAlnum(text[i-1])
		end := i + len(word)
		after := end >= len(text) || !isAlnum(text[end])
		if before && after {
			return true
		}
		idx = i + len(word)
		if idx >= len(text) {
			return false
		}
	}
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b >= 'A' && b <= 'Z'
}
