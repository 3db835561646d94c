package records

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"marketplace/internal/accounts"
	"marketplace/internal/catalog"
	"marketplace/internal/complaints"
	"marketplace/internal/orders"
)

// Section headers of a snapshot file. Each header is followed by one record
// per line until the next header.
const (
	SectionAccounts   = "[accounts]"
	SectionProducts   = "[products]"
	SectionOrders     = "[orders]"
	SectionComplaints = "[complaints]"
)

// Snapshot is the full marketplace state in store order.
type Snapshot struct {
	Accounts   []accounts.Account
	Products   []catalog.Product
	Orders     []orders.Order
	Complaints []complaints.Complaint
}

func WriteSnapshot(w io.Writer, s Snapshot) error {
	bw := bufio.NewWriter(w)
	section := func(header string, lines []string) {
		fmt.Fprintln(bw, header)
		for _, l := range lines {
			fmt.Fprintln(bw, l)
		}
	}

	lines := make([]string, len(s.Accounts))
	for i, a := range s.Accounts {
		lines[i] = EncodeAccount(a)
	}
	section(SectionAccounts, lines)

	lines = make([]string, len(s.Products))
	for i, p := range s.Products {
		lines[i] = EncodeProduct(p)
	}
	section(SectionProducts, lines)

	lines = make([]string, len(s.Orders))
	for i, o := range s.Orders {
		lines[i] = EncodeOrder(o)
	}
	section(SectionOrders, lines)

	lines = make([]string, len(s.Complaints))
	for i, c := range s.Complaints {
		lines[i] = EncodeComplaint(c)
	}
	section(SectionComplaints, lines)

	return bw.Flush()
}

// ReadSnapshot parses what WriteSnapshot produced. Blank lines are skipped;
// a record outside any section is malformed.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var (
		snap    Snapshot
		section string
		lineNo  int
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		switch line {
		case SectionAccounts, SectionProducts, SectionOrders, SectionComplaints:
			section = line
			continue
		}

		var err error
		switch section {
		case SectionAccounts:
			var a accounts.Account
			if a, err = DecodeAccount(line); err == nil {
				snap.Accounts = append(snap.Accounts, a)
			}
		case SectionProducts:
			var p catalog.Product
			if p, err = DecodeProduct(line); err == nil {
				snap.Products = append(snap.Products, p)
			}
		case SectionOrders:
			var o orders.Order
			if o, err = DecodeOrder(line); err == nil {
				snap.Orders = append(snap.Orders, o)
			}
		case SectionComplaints:
			var c complaints.Complaint
			if c, err = DecodeComplaint(line); err == nil {
				snap.Complaints = append(snap.Complaints, c)
			}
		default:
			err = fmt.Errorf("record outside a section: %w", ErrMalformed)
		}
		if err != nil {
			return Snapshot{}, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("reading snapshot: %w", err)
	}
	return snap, nil
}
