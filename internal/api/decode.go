package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"pulseadmin/internal/catalog"
	"pulseadmin/internal/session"
)

// Response contract. Every response body passes through this file:
//
//	GET    /products       {"products": [Product...]}
//	GET    /products/{id}  {"product": Product, "message": string}
//	POST   /products       Product
//	PUT    /products/{id}  Product
//	DELETE /products/{id}  empty or {"message": string}
//	POST   /auth/login     {"token": string, "user": User}
//	non-2xx                {"message": string}

type listEnvelope struct {
	Products []catalog.Product `json:"products"`
}

type productEnvelope struct {
	Product *catalog.Product `json:"product"`
	Message string           `json:"message"`
}

type messageBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// LoginResponse is the successful login payload.
type LoginResponse struct {
	Token string       `json:"token"`
	User  session.User `json:"user"`
}

const maxErrorBody = 64 << 10

func decodeJSON(op string, r io.Reader, v interface{}) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("unreadable response: %w", err)}
	}
	return nil
}

func decodeList(r io.Reader) ([]catalog.Product, error) {
	var env listEnvelope
	if err := decodeJSON(OpList, r, &env); err != nil {
		return nil, err
	}
	if env.Products == nil {
		return []catalog.Product{}, nil
	}
	return env.Products, nil
}

func decodeEnvelopedProduct(r io.Reader) (catalog.Product, error) {
	var env productEnvelope
	if err := decodeJSON(OpGet, r, &env); err != nil {
		return catalog.Product{}, err
	}
	if env.Product == nil {
		return catalog.Product{}, &NetworkError{Op: OpGet, Err: fmt.Errorf("response has no product")}
	}
	return *env.Product, nil
}

func decodeProduct(op string, r io.Reader) (catalog.Product, error) {
	var p catalog.Product
	if err := decodeJSON(op, r, &p); err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

func decodeLogin(r io.Reader) (*LoginResponse, error) {
	var lr LoginResponse
	if err := decodeJSON(OpLogin, r, &lr); err != nil {
		return nil, err
	}
	return &lr, nil
}

// decodeError turns a non-2xx response into a *RemoteError.
func decodeError(op string, resp *http.Response, reqID string) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body messageBody
	message := ""
	if json.Unmarshal(data, &body) == nil {
		message = strings.TrimSpace(body.Message)
		if message == "" {
			message = strings.TrimSpace(body.Error)
		}
	}
	return newRemoteError(op, resp.StatusCode, message, reqID)
}
