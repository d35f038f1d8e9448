package catalog

import (
	"fmt"
	"net/http"
)

// Error codes returned to API clients.
const (
	CodeUnknownProductID   = "catalog_unknown_product_id"
	CodeProductInvalidID   = "catalog_product_invalid_id"
	CodeVariationInvalidID = "catalog_product_variation_invalid_id"
	CodeTaxonomyInvalid    = "catalog_taxonomy_invalid"
	CodeTermInvalid        = "catalog_term_invalid"
	CodeAttributeInvalidID = "catalog_attribute_invalid_id"
	CodeReviewInvalidID    = "catalog_review_invalid_id"
	CodePermissionDenied   = "catalog_api_permission_denied"
	CodeInvalidParam       = "catalog_rest_invalid_param"
	CodeInternal           = "catalog_internal_error"
	CodeNoRoute            = "catalog_rest_no_route"
)

// Error is a failure reported to the client with a machine readable code.
type Error struct {
	Code    string
	Message string
	Status  int
	Data    map[string]interface{}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NotFound(code, message string) *Error {
	return &Error{Code: code, Message: message, Status: http.StatusNotFound}
}

func BadRequest(code, message string) *Error {
	return &Error{Code: code, Message: message, Status: http.StatusBadRequest}
}

func ErrUnknownProduct() *Error {
	return NotFound(CodeUnknownProductID, "Product does not exist! Check that you have submitted a product ID or SKU ID correctly for a product that exists.")
}

func ErrInvalidProduct() *Error {
	return NotFound(CodeProductInvalidID, "Invalid ID.")
}

func ErrUnknownVariation() *Error {
	return NotFound(CodeUnknownProductID, "Variation does not exist.")
}

func ErrVariationNotChild() *Error {
	return NotFound(CodeVariationInvalidID, "Variation does not belong to this product.")
}

func ErrInvalidTaxonomy() *Error {
	return NotFound(CodeTaxonomyInvalid, "Taxonomy does not exist.")
}

func ErrInvalidTerm() *Error {
	return NotFound(CodeTermInvalid, "Term does not exist.")
}

func ErrInvalidAttribute() *Error {
	return NotFound(CodeAttributeInvalidID, "Resource does not exist.")
}

func ErrInvalidReview() *Error {
	return NotFound(CodeReviewInvalidID, "Invalid review ID.")
}

func ErrPermissionDenied() *Error {
	return &Error{Code: CodePermissionDenied, Message: "Sorry, you are not allowed to do that.", Status: http.StatusForbidden}
}

// ErrInvalidParam reports a request parameter that could not be used.
func ErrInvalidParam(param, message string) *Error {
	return &Error{
		Code:    CodeInvalidParam,
		Message: fmt.Sprintf("Invalid parameter(s): %s", param),
		Status:  http.StatusBadRequest,
		Data:    map[string]interface{}{"params": map[string]string{param: message}},
	}
}

// Body is the JSON document written for the error.
func (e *Error) Body() map[string]interface{} {
	data := map[string]interface{}{"status": e.Status}
	for k, v := range e.Data {
		data[k] = v
	}
	return map[string]interface{}{
		"code":    e.Code,
		"message": e.Message,
		"data":    data,
	}
}

// ErrInternal is reported for failures the client cannot act on.
func ErrInternal() *Error {
	return &Error{Code: CodeInternal, Message: "An unexpected error occurred.", Status: http.StatusInternalServerError}
}

func ErrNoRoute() *Error {
	return NotFound(CodeNoRoute, "No route was found matching the URL and request method.")
}
