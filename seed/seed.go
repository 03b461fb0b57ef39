// Package seed supplies the invoices a fresh billpay ledger starts with,
// either the built-in defaults or a YAML seed file.
//
// A seed file lists invoices under an "invoices" key:
//
//	invoices:
//	  - subscriberNo: "1234567890"
//	    month: "2024-03"
//	    amount: 50
package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/xraph/billpay/invoice"
)

// Entry is one seed invoice.
type Entry struct {
	SubscriberNo string `yaml:"subscriberNo"`
	Month        string `yaml:"month"`
	// Amount is kept as text so values like 10.10 keep their exact decimal form.
	Amount string `yaml:"amount"`
}

// File is the document layout of a seed file.
type File struct {
	Invoices []Entry `yaml:"invoices"`
}

// Default returns the invoices the service starts with when no seed file is
// configured.
func Default() []Entry {
	return []Entry{
		{SubscriberNo: "1234567890", Month: "2024-03", Amount: "50"},
		{SubscriberNo: "0987654321", Month: "2024-03", Amount: "75"},
	}
}

// Load reads a seed file from path.
func Load(path string) ([]Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	entries, err := Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("seed: %s: %w", path, err)
	}
	return entries, nil
}

// Parse decodes a seed document.
func Parse(r io.Reader) ([]Entry, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("decode: %w", err)
	}
	return f.Invoices, nil
}

// Invoices validates entries and converts them to invoice drafts. Every
// entry needs a subscriber number and a month, amounts must be non-negative
// decimals (empty means 0) and keys must be unique within the set.
func Invoices(entries []Entry) ([]*invoice.Invoice, error) {
	out := make([]*invoice.Invoice, 0, len(entries))
	seen := make(map[invoice.Key]int, len(entries))

	for i, e := range entries {
		if e.SubscriberNo == "" || e.Month == "" {
			return nil, fmt.Errorf("seed: entry %d: subscriberNo and month are required", i)
		}

		amount := decimal.Zero
		if e.Amount != "" {
			var err error
			amount, err = decimal.NewFromString(e.Amount)
			if err != nil {
				return nil, fmt.Errorf("seed: entry %d: amount %q: %w", i, e.Amount, err)
			}
		}
		if amount.IsNegative() {
			return nil, fmt.Errorf("seed: entry %d: amount %s is negative", i, amount)
		}

		inv := &invoice.Invoice{SubscriberNo: e.SubscriberNo, Month: e.Month, Amount: amount}
		if first, dup := seen[inv.Key()]; dup {
			return nil, fmt.Errorf("seed: entry %d duplicates entry %d (%s)", i, first, inv.Key())
		}
		seen[inv.Key()] = i
		out = append(out, inv)
	}
	return out, nil
}

// Resolve returns the invoices from path, or the defaults when path is empty.
func Resolve(path string) ([]*invoice.Invoice, error) {
	entries := Default()
	if path != "" {
		var err error
		if entries, err = Load(path); err != nil {
			return nil, err
		}
	}
	return Invoices(entries)
}
