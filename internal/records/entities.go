package records

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"marketplace/internal/accounts"
	"marketplace/internal/catalog"
	"marketplace/internal/complaints"
	"marketplace/internal/orders"
)

// TimeLayout is used for every timestamp field. The zero time encodes as "".
const TimeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(TimeLayout, s)
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Account: username|password|role|email|phone
func EncodeAccount(a accounts.Account) string {
	return join([]string{a.Username, a.Password, string(a.Role), a.Email, a.Phone}, FieldSep)
}

func DecodeAccount(line string) (accounts.Account, error) {
	f := split(line, FieldSep)
	if err := need("account", f, 3); err != nil {
		return accounts.Account{}, err
	}
	return accounts.Account{
		Username: f[0],
		Password: f[1],
		Role:     accounts.ParseRole(f[2]),
		Email:    field(f, 3),
		Phone:    field(f, 4),
	}, nil
}

// Product: id|name|category|price|stock|description|active|seller|sellerPhone
func EncodeProduct(p catalog.Product) string {
	return join([]string{
		p.ID, p.Name, p.Category, p.Price.String(), strconv.Itoa(p.Stock),
		p.Description, formatBool(p.Active), p.SellerUsername, p.SellerPhone,
	}, FieldSep)
}

func DecodeProduct(line string) (catalog.Product, error) {
	f := split(line, FieldSep)
	if err := need("product", f, 5); err != nil {
		return catalog.Product{}, err
	}
	price, err := decimal.NewFromString(f[3])
	if err != nil {
		return catalog.Product{}, fmt.Errorf("product %s price: %w: %v", f[0], ErrMalformed, err)
	}
	stock, err := strconv.Atoi(f[4])
	if err != nil {
		return catalog.Product{}, fmt.Errorf("product %s stock: %w: %v", f[0], ErrMalformed, err)
	}
	active := true
	if len(f) > 6 {
		active = f[6] == "1" || f[6] == "true"
	}
	return catalog.Product{
		ID:             f[0],
		Name:           f[1],
		Category:       f[2],
		Price:          price,
		Stock:          stock,
		Description:    field(f, 5),
		Active:         active,
		SellerUsername: field(f, 7),
		SellerPhone:    field(f, 8),
	}, nil
}

// Line item: productId|name|quantity|price|seller|sellerPhone
func encodeLineItem(it orders.LineItem) string {
	return join([]string{
		it.ProductID, it.ProductName, strconv.Itoa(it.Quantity), it.Price.String(),
		it.SellerUsername, it.SellerPhone,
	}, FieldSep)
}

func decodeLineItem(raw string) (orders.LineItem, error) {
	f := split(raw, FieldSep)
	if err := need("line item", f, 4); err != nil {
		return orders.LineItem{}, err
	}
	qty, err := strconv.Atoi(f[2])
	if err != nil {
		return orders.LineItem{}, fmt.Errorf("line item %s quantity: %w: %v", f[0], ErrMalformed, err)
	}
	price, err := decimal.NewFromString(f[3])
	if err != nil {
		return orders.LineItem{}, fmt.Errorf("line item %s price: %w: %v", f[0], ErrMalformed, err)
	}
	return orders.LineItem{
		ProductID:      f[0],
		ProductName:    f[1],
		Quantity:       qty,
		Price:          price,
		SellerUsername: field(f, 4),
		SellerPhone:    field(f, 5),
	}, nil
}

// Order: id|buyer|total|createdAt|status|address|payment|buyerPhone|items
func EncodeOrder(o orders.Order) string {
	items := make([]string, len(o.Items))
	for i, it := range o.Items {
		items[i] = encodeLineItem(it)
	}
	return join([]string{
		o.ID, o.Buyer, o.Total.String(), formatTime(o.CreatedAt), string(o.Status),
		o.ShippingAddress, o.PaymentMethod, o.BuyerPhone, strings.Join(items, string(ItemSep)),
	}, FieldSep)
}

func DecodeOrder(line string) (orders.Order, error) {
	f := split(line, FieldSep)
	if err := need("order", f, 7); err != nil {
		return orders.Order{}, err
	}
	total, err := decimal.NewFromString(f[2])
	if err != nil {
		return orders.Order{}, fmt.Errorf("order %s total: %w: %v", f[0], ErrMalformed, err)
	}
	createdAt, err := parseTime(f[3])
	if err != nil {
		return orders.Order{}, fmt.Errorf("order %s time: %w: %v", f[0], ErrMalformed, err)
	}
	status := orders.Status(f[4])
	if !status.Valid() {
		return orders.Order{}, fmt.Errorf("order %s status %q: %w", f[0], f[4], ErrMalformed)
	}

	o := orders.Order{
		ID:              f[0],
		Buyer:           f[1],
		Total:           total,
		CreatedAt:       createdAt,
		Status:          status,
		ShippingAddress: f[5],
		PaymentMethod:   f[6],
		BuyerPhone:      field(f, 7),
	}
	if raw := field(f, 8); raw != "" {
		for _, itemRaw := range splitRaw(raw, ItemSep) {
			it, err := decodeLineItem(itemRaw)
			if err != nil {
				return orders.Order{}, fmt.Errorf("order %s: %w", f[0], err)
			}
			o.Items = append(o.Items, it)
		}
	}
	return o, nil
}

// Complaint: id|productId|productName|complainant|type|title|content|createdAt|status|response|respondedAt|admin
func EncodeComplaint(c complaints.Complaint) string {
	return join([]string{
		c.ID, c.ProductID, c.ProductName, c.Complainant, c.Type, c.Title, c.Content,
		formatTime(c.CreatedAt), string(c.Status), c.Response, formatTime(c.RespondedAt), c.AdminUser,
	}, FieldSep)
}

func DecodeComplaint(line string) (complaints.Complaint, error) {
	f := split(line, FieldSep)
	if err := need("complaint", f, 9); err != nil {
		return complaints.Complaint{}, err
	}
	createdAt, err := parseTime(f[7])
	if err != nil {
		return complaints.Complaint{}, fmt.Errorf("complaint %s time: %w: %v", f[0], ErrMalformed, err)
	}
	respondedAt, err := parseTime(field(f, 10))
	if err != nil {
		return complaints.Complaint{}, fmt.Errorf("complaint %s response time: %w: %v", f[0], ErrMalformed, err)
	}
	return complaints.Complaint{
		ID:          f[0],
		ProductID:   f[1],
		ProductName: f[2],
		Complainant: f[3],
		Type:        f[4],
		Title:       f[5],
		Content:     f[6],
		CreatedAt:   createdAt,
		Status:      complaints.Status(f[8]),
		Response:    field(f, 9),
		RespondedAt: respondedAt,
		AdminUser:   field(f, 11),
	}, nil
}
