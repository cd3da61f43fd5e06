// Package odoo provides the connector to the external Odoo CRM over its
// JSON-RPC endpoint. Leads are pushed into the crm.lead model; the connector
// never reads back or mutates leads beyond the single create call.
package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"lieux_backend/platform/config"
)

// Connector creates leads in the external CRM.
// Callers must check IsConfigured before attempting any call.
type Connector interface {
	IsConfigured() bool
	CreateB2BLead(ctx context.Context, lead B2BLead) (int64, error)
	CreateWeddingLead(ctx context.Context, lead WeddingLead) (int64, error)
}

// B2BLead is the normalized corporate-inquiry payload for the CRM.
type B2BLead struct {
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Company    string
	Position   string
	EventType  string
	EventDate  string
	GuestCount int
	Budget     string
	Message    string
	Venues     []string
}

// WeddingLead is the normalized wedding-inquiry payload for the CRM.
type WeddingLead struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	WeddingDate    string
	GuestCount     int
	Message        string
	GroomFirstName string
	GroomLastName  string
	Venues         []string
}

// Client talks JSON-RPC to an Odoo instance.
type Client struct {
	baseURL  string
	database string
	username string
	apiKey   string
	client   *http.Client

	mu  sync.Mutex
	uid int64 // authenticated user id, cached after first login
}

// NewClient creates an Odoo connector from configuration. A client built from
// incomplete configuration reports IsConfigured() == false and rejects calls.
func NewClient(cfg config.OdooConfig) *Client {
	return &Client{
		baseURL:  cfg.GetOdooURL(),
		database: cfg.GetOdooDatabase(),
		username: cfg.GetOdooUsername(),
		apiKey:   cfg.GetOdooAPIKey(),
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// IsConfigured reports whether all connection settings are present.
func (c *Client) IsConfigured() bool {
	return c.baseURL != "" && c.database != "" && c.username != "" && c.apiKey != ""
}

// CreateB2BLead creates a corporate lead in crm.lead and returns its id.
func (c *Client) CreateB2BLead(ctx context.Context, lead B2BLead) (int64, error) {
	fields := map[string]interface{}{
		"name":         fmt.Sprintf("Demande B2B - %s", lead.Company),
		"contact_name": fmt.Sprintf("%s %s", lead.FirstName, lead.LastName),
		"partner_name": lead.Company,
		"email_from":   lead.Email,
		"phone":        lead.Phone,
		"function":     lead.Position,
		"description":  b2bDescription(lead),
		"type":         "lead",
	}
	return c.createLead(ctx, fields)
}

// CreateWeddingLead creates a wedding lead in crm.lead and returns its id.
func (c *Client) CreateWeddingLead(ctx context.Context, lead WeddingLead) (int64, error) {
	fields := map[string]interface{}{
		"name":         fmt.Sprintf("Demande mariage - %s %s", lead.FirstName, lead.LastName),
		"contact_name": fmt.Sprintf("%s %s", lead.FirstName, lead.LastName),
		"email_from":   lead.Email,
		"phone":        lead.Phone,
		"description":  weddingDescription(lead),
		"type":         "lead",
	}
	return c.createLead(ctx, fields)
}

func b2bDescription(lead B2BLead) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Type d'événement: %s\n", lead.EventType)
	fmt.Fprintf(&buf, "Nombre d'invités: %d\n", lead.GuestCount)
	if lead.EventDate != "" {
		fmt.Fprintf(&buf, "Date souhaitée: %s\n", lead.EventDate)
	}
	if lead.Budget != "" {
		fmt.Fprintf(&buf, "Budget: %s\n", lead.Budget)
	}
	appendVenues(&buf, lead.Venues)
	if lead.Message != "" {
		fmt.Fprintf(&buf, "\n%s", lead.Message)
	}
	return buf.String()
}

func weddingDescription(lead WeddingLead) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Nombre d'invités: %d\n", lead.GuestCount)
	if lead.WeddingDate != "" {
		fmt.Fprintf(&buf, "Date souhaitée: %s\n", lead.WeddingDate)
	}
	if lead.GroomFirstName != "" || lead.GroomLastName != "" {
		fmt.Fprintf(&buf, "Conjoint(e): %s %s\n", lead.GroomFirstName, lead.GroomLastName)
	}
	appendVenues(&buf, lead.Venues)
	if lead.Message != "" {
		fmt.Fprintf(&buf, "\n%s", lead.Message)
	}
	return buf.String()
}

func appendVenues(buf *bytes.Buffer, venues []string) {
	for i, venue := range venues {
		if i == 0 {
			buf.WriteString("Lieux demandés:\n")
		}
		fmt.Fprintf(buf, "- %s\n", venue)
	}
}

func (c *Client) createLead(ctx context.Context, fields map[string]interface{}) (int64, error) {
	if !c.IsConfigured() {
		return 0, fmt.Errorf("odoo connector is not configured")
	}

	uid, err := c.authenticate(ctx)
	if err != nil {
		return 0, err
	}

	var leadID int64
	err = c.call(ctx, "object", "execute_kw", []interface{}{
		c.database, uid, c.apiKey,
		"crm.lead", "create",
		[]interface{}{fields},
	}, &leadID)
	if err != nil {
		return 0, fmt.Errorf("odoo create lead: %w", err)
	}

	return leadID, nil
}

// authenticate resolves and caches the Odoo user id for the configured API key.
func (c *Client) authenticate(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.uid != 0 {
		return c.uid, nil
	}

	var uid int64
	err := c.call(ctx, "common", "authenticate", []interface{}{
		c.database, c.username, c.apiKey, map[string]interface{}{},
	}, &uid)
	if err != nil {
		return 0, fmt.Errorf("odoo authenticate: %w", err)
	}
	if uid == 0 {
		return 0, fmt.Errorf("odoo authenticate: invalid credentials")
	}

	c.uid = uid
	return uid, nil
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int64     `json:"id"`
}

type rpcParams struct {
	Service string        `json:"service"`
	Method  string        `json:"method"`
	Args    []interface{} `json:"args"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Message string `json:"message"`
	} `json:"data"`
}

func (e *rpcError) Error() string {
	if e.Data.Message != "" {
		return e.Data.Message
	}
	return e.Message
}

func (c *Client) call(ctx context.Context, service, method string, args []interface{}, result interface{}) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  rpcParams{Service: service, Method: method, Args: args},
		ID:      time.Now().UnixNano(),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/jsonrpc", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("odoo returned status %d", resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return fmt.Errorf("decode odoo response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if result != nil && len(rpcResp.Result) > 0 {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("decode odoo result: %w", err)
		}
	}

	return nil
}
