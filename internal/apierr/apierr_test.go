package apierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesByKind(t *testing.T) {
	err := fmt.Errorf("load cart: %w", AuthExpired())

	assert.ErrorIs(t, err, ErrAuthExpired)
	assert.NotErrorIs(t, err, ErrAuthRequired)
	assert.Equal(t, KindAuthExpired, KindOf(err))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

func TestSilentErrors(t *testing.T) {
	for _, err := range []error{AuthRequired(), AuthExpired(), Network(errors.New("401"), true)} {
		assert.True(t, IsSilent(err), err.Error())
		assert.True(t, IsAuth(err), err.Error())
		assert.Empty(t, UserMessage(err), err.Error())
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"server message", RequestFailed(400, nil, "out of stock"), "out of stock"},
		{"default request failure", RequestFailed(500, nil, ""), "request failed, please try again"},
		{"network", Network(errors.New("dial tcp"), false), "network unavailable, please try again"},
		{"partial", PartialCheckout(1, 2, errors.New("boom")), "1 of 2 orders created"},
		{"empty selection", EmptySelection(""), "no items selected"},
		{"address", AddressRequired(""), "please select a delivery address"},
		{"foreign error", errors.New("boom"), "something went wrong, please try again"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestError_String(t *testing.T) {
	assert.Equal(t, "auth required", AuthRequired().Error())
	assert.Equal(t, "auth expired", AuthExpired().Error())
	assert.Equal(t, "request failed: status 409: conflict", RequestFailed(409, nil, "conflict").Error())
	assert.Equal(t, "network error: network unavailable, please try again", Network(errors.New("x"), false).Error())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("order 2 rejected")
	err := PartialCheckout(1, 2, cause)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrPartialCheckout)
}
