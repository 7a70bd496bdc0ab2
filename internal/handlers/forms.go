package handlers

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type credentialsForm struct {
	Username string `form:"username" validate:"required,max=64,username"`
	Password string `form:"password" validate:"required,min=4,max=72"`
}

type projectForm struct {
	Title            string `form:"title" validate:"required,max=200"`
	Price            string `form:"price" validate:"required"`
	Description      string `form:"description"`
	ProblemStatement string `form:"problem_statement"`
	Objectives       string `form:"objectives"`
	Outcomes         string `form:"outcomes"`
	Technologies     string `form:"technologies"`
}

type requestForm struct {
	Title            string `form:"title" validate:"required,max=200"`
	Description      string `form:"description" validate:"required"`
	ProblemStatement string `form:"problem_statement" validate:"required"`
	Objectives       string `form:"objectives" validate:"required"`
	Outcomes         string `form:"outcomes" validate:"required"`
	OutputIdea       string `form:"output_idea" validate:"required"`
}

type paymentForm struct {
	TransactionID string `form:"transaction_id" validate:"required,max=64"`
}

type priceForm struct {
	Price string `form:"price" validate:"required"`
}

var errInvalidPrice = errors.New("price must be a whole, non-negative rupee amount")

const invalidPriceMsg = "Price must be a whole, non-negative amount in rupees."

// parsePrice accepts whole rupee amounts such as "1500" or "1500.00".
func parsePrice(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() || !d.Equal(d.Truncate(0)) || !d.BigInt().IsInt64() {
		return 0, errInvalidPrice
	}
	return d.IntPart(), nil
}
