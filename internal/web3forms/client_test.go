package web3forms_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strictdev/contact-relay/internal/web3forms"
)

func TestDeliver(t *testing.T) {
	var received web3forms.Submission

	e := echo.New()
	e.POST("/submit", func(c echo.Context) error {
		require.NoError(t, json.NewDecoder(c.Request().Body).Decode(&received))
		return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "ok"})
	})
	server := httptest.NewServer(e)
	defer server.Close()

	client := web3forms.NewClient(server.URL + "/submit")
	err := client.Deliver(context.Background(), web3forms.Submission{
		AccessKey: "key-123",
		Subject:   "Novo pedido via Strict.Dev",
		FromName:  "Maria Silva",
		Email:     "maria@example.com",
		Company:   "Acme",
		Message:   "Preciso de um novo website para a minha empresa",
		ReplyTo:   "maria@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "key-123", received.AccessKey)
	assert.Equal(t, "maria@example.com", received.ReplyTo)
	assert.Equal(t, "Maria Silva", received.FromName)
}

func TestDeliverProviderRejects(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		headers map[string]string
	}{
		{"ExplicitFailureFlag", http.StatusOK, `{"success":false,"message":"invalid access key"}`, nil},
		{"ServerError", http.StatusInternalServerError, `{"success":false}`, nil},
		{"NonJSONBody", http.StatusBadGateway, "<html>upstream broke</html>", nil},
		{"EmptyBody", http.StatusOK, "", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := web3forms.NewClient(server.URL)
			err := client.Deliver(context.Background(), web3forms.Submission{AccessKey: "k"})
			require.Error(t, err)

			var dErr *web3forms.DeliveryError
			require.True(t, errors.As(err, &dErr))
			assert.Equal(t, tc.status, dErr.StatusCode)
		})
	}
}

func TestDeliverNoDoubleSendOnServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := web3forms.NewClient(server.URL)
	err := client.Deliver(context.Background(), web3forms.Submission{AccessKey: "k"})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "a 5xx answer must not be retried")
}
