package allocator

import (
	"encoding/csv"
	"errors"
	"io"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

// Canonical roster fields.
const (
	FieldName    = "name"
	FieldID      = "id"
	FieldGroup   = "group"
	FieldContact = "contact"
)

// HeaderRule maps header spellings to one canonical field.
type HeaderRule struct {
	Field    string
	Synonyms []string
	Required bool
}

// DefaultHeaderRules covers the column names seen on exam-cell rosters.
var DefaultHeaderRules = []HeaderRule{
	{Field: FieldName, Required: true, Synonyms: []string{
		"name", "student name", "full name", "candidate name", "student",
	}},
	{Field: FieldID, Required: true, Synonyms: []string{
		"id", "hall ticket number", "hall ticket no", "hall ticket", "roll no", "roll number", "roll",
		"register number", "registration number", "reg no", "student id", "ht no", "htno",
		"admission number", "enrollment number",
	}},
	{Field: FieldGroup, Required: true, Synonyms: []string{
		"group", "branch", "department", "dept", "stream", "course", "program", "programme",
	}},
	{Field: FieldContact, Synonyms: []string{
		"contact", "contact number", "phone", "phone number", "phone no", "mobile", "mobile number", "mobile no",
	}},
}

// Source is one tabular roster: a header row followed by data rows.
type Source struct {
	Name string
	Text string
}

// Normalizer turns roster sources into canonical student records.
type Normalizer struct {
	rules []HeaderRule
}

// NewNormalizer builds a normalizer; nil rules fall back to DefaultHeaderRules.
func NewNormalizer(rules []HeaderRule) *Normalizer {
	if len(rules) == 0 {
		rules = DefaultHeaderRules
	}
	return &Normalizer{rules: rules}
}

// Normalize parses every source in order and concatenates their records.
func (n *Normalizer) Normalize(sources []Source) ([]models.Student, error) {
	var students []models.Student
	for _, src := range sources {
		records, err := n.parseSource(src)
		if err != nil {
			return nil, err
		}
		students = append(students, records...)
	}
	if len(students) == 0 {
		return nil, &NoRecordsError{}
	}
	if err := CheckDuplicateIDs(students); err != nil {
		return nil, err
	}
	return students, nil
}

// NormalizeRecords cleans records produced outside the engine: values are
// trimmed, entries missing name or id are dropped and ids must be unique.
func (n *Normalizer) NormalizeRecords(records []models.Student) ([]models.Student, error) {
	students := make([]models.Student, 0, len(records))
	for _, r := range records {
		s := models.Student{
			Name:    strings.TrimSpace(r.Name),
			ID:      strings.TrimSpace(r.ID),
			Group:   strings.TrimSpace(r.Group),
			Contact: strings.TrimSpace(r.Contact),
		}
		if s.Name == "" || s.ID == "" {
			continue
		}
		students = append(students, s)
	}
	if len(students) == 0 {
		return nil, &NoRecordsError{}
	}
	if err := CheckDuplicateIDs(students); err != nil {
		return nil, err
	}
	return students, nil
}

// CheckDuplicateIDs fails on the first id seen twice.
func CheckDuplicateIDs(students []models.Student) error {
	seen := make(map[string]struct{}, len(students))
	for _, s := range students {
		key := s.Key()
		if _, ok := seen[key]; ok {
			return &DuplicateIDError{ID: s.ID}
		}
		seen[key] = struct{}{}
	}
	return nil
}

func (n *Normalizer) parseSource(src Source) ([]models.Student, error) {
	text := strings.TrimPrefix(src.Text, "\ufeff")
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = sniffDelimiter(text)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var header []string
	for header == nil {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil, n.missingRequired(src.Name, nil)
		}
		if err != nil {
			return nil, &SchemaError{Source: src.Name, Field: "header"}
		}
		if !blankRow(row) {
			header = row
		}
	}

	columns := n.matchHeaders(header)
	if err := n.missingRequired(src.Name, columns); err != nil {
		return nil, err
	}

	var students []models.Student
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Malformed rows are skipped like blank ones.
			continue
		}
		s := models.Student{
			Name:    cell(row, columns, FieldName),
			ID:      cell(row, columns, FieldID),
			Group:   cell(row, columns, FieldGroup),
			Contact: cell(row, columns, FieldContact),
		}
		if s.Name == "" || s.ID == "" {
			continue
		}
		students = append(students, s)
	}
	return students, nil
}

func (n *Normalizer) missingRequired(source string, columns map[string]int) error {
	for _, rule := range n.rules {
		if !rule.Required {
			continue
		}
		if _, ok := columns[rule.Field]; !ok {
			return &SchemaError{Source: source, Field: rule.Field}
		}
	}
	return nil
}

type headerCandidate struct {
	rule   int
	column int
	score  int
	synLen int
}

// matchHeaders assigns each rule at most one column. Exact synonym matches
// beat containment, longer synonyms beat shorter ones, then rule order and
// column order decide.
func (n *Normalizer) matchHeaders(header []string) map[string]int {
	folded := make([]string, len(header))
	for i, h := range header {
		folded[i] = foldHeader(h)
	}

	var candidates []headerCandidate
	for ri, rule := range n.rules {
		for ci, h := range folded {
			if h == "" {
				continue
			}
			best := headerCandidate{rule: ri, column: ci}
			for _, syn := range rule.Synonyms {
				key := foldHeader(syn)
				if key == "" {
					continue
				}
				score := 0
				switch {
				case h == key:
					score = 2
				case len(key) >= 3 && strings.Contains(h, key):
					score = 1
				}
				if score > best.score || (score == best.score && score > 0 && len(key) > best.synLen) {
					best.score = score
					best.synLen = len(key)
				}
			}
			if best.score > 0 {
				candidates = append(candidates, best)
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.synLen != b.synLen {
			return a.synLen > b.synLen
		}
		if a.rule != b.rule {
			return a.rule < b.rule
		}
		return a.column < b.column
	})

	columns := make(map[string]int)
	claimed := make(map[int]bool)
	for _, c := range candidates {
		field := n.rules[c.rule].Field
		if _, done := columns[field]; done || claimed[c.column] {
			continue
		}
		columns[field] = c.column
		claimed[c.column] = true
	}
	return columns
}

// foldHeader reduces a header to lower-case letters and digits with
// diacritics removed, so "Roll No." and "roll_no" compare equal.
func foldHeader(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	stripped = cases.Fold().String(stripped)

	var b strings.Builder
	for _, r := range stripped {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// sniffDelimiter guesses the delimiter from the first non-blank line.
func sniffDelimiter(text string) rune {
	line := ""
	for _, l := range strings.FieldsFunc(text, func(r rune) bool { return r == '\r' || r == '\n' }) {
		if strings.TrimSpace(l) != "" {
			line = l
			break
		}
	}
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		if c := strings.Count(line, string(d)); c > bestCount {
			best, bestCount = d, c
		}
	}
	return best
}

func cell(row []string, columns map[string]int, field string) string {
	idx, ok := columns[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
