package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/commerce-service/pkg/util/errorutil"
)

func TestValidator_ReportsJSONFieldNames(t *testing.T) {
	v := NewValidator()

	err := v.Struct(SignupRequest{Email: "not-an-email", Password: "short"})
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Equal(t, 400, domainErr.HTTPStatus)
	assert.Equal(t, "is required", domainErr.Details["name"])
	assert.Equal(t, "must be a valid email address", domainErr.Details["email"])
	assert.Equal(t, "must be at least 8 characters long", domainErr.Details["password"])
}

func TestValidator_Reviews(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Struct(CreateReviewRequest{ProductID: 1, Content: "good", Rating: 5}))

	err := v.Struct(CreateReviewRequest{ProductID: 1, Content: "good", Rating: 6})
	require.Error(t, err)
	assert.Equal(t, "must be at most 5", apperrors.ToDomainError(err).Details["rating"])
}

func TestValidator_OrderStatus(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Struct(UpdateOrderStatusRequest{Status: "SHIPPING"}))
	assert.Error(t, v.Struct(UpdateOrderStatusRequest{Status: "LOST"}))
}

func TestValidator_ProductPriceBounds(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Struct(ProductRequest{Name: "Lamp", Price: 100_000_000_000}))

	err := v.Struct(ProductRequest{Name: "Lamp", Price: 100_000_000_001})
	require.Error(t, err)
	assert.Contains(t, apperrors.ToDomainError(err).Details, "price")

	assert.Error(t, v.Struct(ProductRequest{Name: "Lamp", Price: -1}))
}
