package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mercadito/storefront/internal/cart"
)

// HeaderCorrelationID correlates a client request with backend logs.
const HeaderCorrelationID = "X-Correlation-Id"

// TokenProvider supplies the bearer token for authenticated calls.
// Returning "" sends the request unauthenticated (guest session).
type TokenProvider func() string

// Client talks to the storefront backend over HTTP.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	token   TokenProvider
	logger  *slog.Logger
}

// NewClient builds a Client for the given API base URL
// (e.g. "http://localhost:5043/api"). A nil httpClient uses
// http.DefaultClient; a nil token provider means guest requests.
func NewClient(baseURL string, httpClient *http.Client, token TokenProvider, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway base url %q: %w", baseURL, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{baseURL: u, http: httpClient, token: token, logger: logger}, nil
}

// Wire DTOs mirror the backend cart payloads verbatim.

type cartItemDTO struct {
	ID              int     `json:"id"`
	ProductID       int     `json:"productId"`
	ProductTitle    string  `json:"productTitle"`
	ProductImageURL string  `json:"productImageUrl"`
	Price           float64 `json:"price"` // original listed price
	Quantity        int     `json:"quantity"`
	Discount        float64 `json:"discount"` // percent
	Stock           int     `json:"stock"`
	SubTotalPrice   string  `json:"subTotalPrice"` // formatted, display only
	TotalPrice      string  `json:"totalPrice"`    // formatted, display only
}

type cartResponse struct {
	Data struct {
		ID         int           `json:"id"`
		UserID     int           `json:"userId"`
		Items      []cartItemDTO `json:"items"`
		TotalItems int           `json:"totalItems"`
		TotalPrice float64       `json:"totalPrice"`
	} `json:"data"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type checkoutResponse struct {
	Data struct {
		OrderID     int     `json:"orderId"`
		OrderNumber string  `json:"orderNumber"`
		Status      string  `json:"status"`
		TotalAmount float64 `json:"totalAmount"`
		CreatedAt   string  `json:"createdAt"`
	} `json:"data"`
	Message string `json:"message"`
}

type productDTO struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImagesURL   []string `json:"imagesURL"`
	Price       string   `json:"price"` // formatted display price
	Discount    float64  `json:"discount"`
	Stock       int      `json:"stock"`
	IsAvailable bool     `json:"isAvailable"`
}

type productDetailResponse struct {
	Message string     `json:"message"`
	Data    productDTO `json:"data"`
}

// FetchCart implements Gateway. 204, 404 and empty bodies are an empty
// snapshot: a user without server-side cart content is not an error.
func (c *Client) FetchCart(ctx context.Context) ([]cart.Item, error) {
	resp, err := c.do(ctx, http.MethodGet, "/cart", nil, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.errorFrom(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Err: fmt.Errorf("read cart response: %w", err)}
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}

	var cr cartResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, &Error{Kind: KindUnknown, Err: fmt.Errorf("decode cart response: %w", err)}
	}
	return mapItems(cr.Data.Items), nil
}

// SetItemQuantity implements Gateway. The backend recomputes the cart
// (stock bounds, canonical pricing) and returns the full snapshot.
func (c *Client) SetItemQuantity(ctx context.Context, productID, quantity int) ([]cart.Item, error) {
	form := url.Values{
		"productId": {strconv.Itoa(productID)},
		"quantity":  {strconv.Itoa(quantity)},
	}
	resp, err := c.do(ctx, http.MethodPatch, "/cart/items",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.errorFrom(resp)
	}

	var cr cartResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, &Error{Kind: KindUnknown, Err: fmt.Errorf("decode cart response: %w", err)}
	}
	return mapItems(cr.Data.Items), nil
}

// AddItem implements Gateway. A 409 means the line already exists
// server-side; callers fall back to SetItemQuantity.
func (c *Client) AddItem(ctx context.Context, productID, quantity int) error {
	form := url.Values{
		"productId": {strconv.Itoa(productID)},
		"quantity":  {strconv.Itoa(quantity)},
	}
	resp, err := c.do(ctx, http.MethodPost, "/cart/items",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFrom(resp)
	}
	return nil
}

// RemoveItem implements Gateway.
func (c *Client) RemoveItem(ctx context.Context, productID int) error {
	resp, err := c.do(ctx, http.MethodDelete, "/cart/items/"+strconv.Itoa(productID), nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFrom(resp)
	}
	return nil
}

// ClearCart implements Gateway.
func (c *Client) ClearCart(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/cart/clear", nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFrom(resp)
	}
	return nil
}

// Checkout implements Gateway. Order creation itself is backend
// territory; the client only consumes the order reference.
func (c *Client) Checkout(ctx context.Context) (Order, error) {
	resp, err := c.do(ctx, http.MethodPost, "/orders/create", nil, "")
	if err != nil {
		return Order{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Order{}, c.errorFrom(resp)
	}

	var co checkoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&co); err != nil {
		return Order{}, &Error{Kind: KindUnknown, Err: fmt.Errorf("decode checkout response: %w", err)}
	}
	return Order{
		ID:     co.Data.OrderID,
		Number: co.Data.OrderNumber,
		Status: co.Data.Status,
		Total:  co.Data.TotalAmount,
	}, nil
}

// FetchProduct loads the catalog detail for one product, used to build
// an add candidate with a fresh stock bound.
func (c *Client) FetchProduct(ctx context.Context, productID int) (Product, error) {
	resp, err := c.do(ctx, http.MethodGet, "/product/products/"+strconv.Itoa(productID), nil, "")
	if err != nil {
		return Product{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Product{}, c.errorFrom(resp)
	}

	var pr productDetailResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return Product{}, &Error{Kind: KindUnknown, Err: fmt.Errorf("decode product response: %w", err)}
	}

	price, err := parsePrice(pr.Data.Price)
	if err != nil {
		return Product{}, &Error{Kind: KindUnknown, Err: fmt.Errorf("product %d price %q: %w", productID, pr.Data.Price, err)}
	}

	p := Product{
		ID:          pr.Data.ID,
		Title:       pr.Data.Title,
		Description: pr.Data.Description,
		Price:       price,
		Discount:    pr.Data.Discount,
		Stock:       pr.Data.Stock,
		Available:   pr.Data.IsAvailable,
	}
	if len(pr.Data.ImagesURL) > 0 {
		p.ImageURL = pr.Data.ImagesURL[0]
	}
	return p, nil
}

// do issues one request against the backend. Transport failures come
// back as KindNetwork; callers classify response statuses themselves.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	// Preserve the base path segment (e.g. "/api") when resolving.
	u := *c.baseURL
	u.Path = strings.TrimSuffix(c.baseURL.Path, "/") + path

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Err: fmt.Errorf("build request: %w", err)}
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	req.Header.Set(HeaderCorrelationID, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("gateway transport failure", "method", method, "path", path, "error", err)
		return nil, &Error{Kind: KindNetwork, Err: err}
	}
	return resp, nil
}

// errorFrom turns a non-2xx response into a classified *Error.
// The body's {"message": ...} is carried along when parseable; it is
// informational only and never drives classification.
func (c *Client) errorFrom(resp *http.Response) error {
	kind := classifyStatus(resp.StatusCode)

	msg := ""
	if body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); err == nil && len(body) > 0 {
		var mr messageResponse
		if err := json.Unmarshal(body, &mr); err == nil && mr.Message != "" {
			msg = mr.Message
		} else {
			msg = strings.TrimSpace(string(body))
		}
	}

	return &Error{Kind: kind, Status: resp.StatusCode, Message: msg}
}

// mapItems converts the wire cart lines into store items. The formatted
// price strings are dropped: Price stays the listed pre-discount price
// and display formatting is recomputed locally.
func mapItems(dtos []cartItemDTO) []cart.Item {
	if len(dtos) == 0 {
		return nil
	}
	items := make([]cart.Item, 0, len(dtos))
	for _, d := range dtos {
		it := cart.Item{
			ID:       d.ProductID,
			Name:     d.ProductTitle,
			ImageURL: d.ProductImageURL,
			Price:    d.Price,
			Quantity: d.Quantity,
			Stock:    d.Stock,
		}
		if d.Discount > 0 {
			disc := d.Discount
			it.Discount = &disc
		}
		items = append(items, it)
	}
	return items
}

// parsePrice extracts the numeric amount from a formatted price string
// such as "$12.990" or "12990". Separator dots are treated as thousands
// grouping when they leave no fractional part ambiguity.
func parsePrice(s string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return 0, fmt.Errorf("no digits in price")
	}
	// "12.990" style grouping: exactly three digits after the last dot.
	if i := strings.LastIndex(cleaned, "."); i >= 0 && len(cleaned)-i-1 == 3 {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price: %w", err)
	}
	return v, nil
}
