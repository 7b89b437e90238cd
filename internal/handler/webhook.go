package handler

import (
    "crypto/subtle"
    "errors"
    "io"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/tidwall/gjson"

    "github.com/iliyamo/festival-registration/internal/service"
)

// maxWebhookBody caps provider callbacks.
const maxWebhookBody = 1 << 20

// webhookToken reads the shared secret from the x-webhook-token header or
// the token query parameter.
func webhookToken(c echo.Context) string {
    if t := c.Request().Header.Get("x-webhook-token"); t != "" {
        return t
    }
    return c.QueryParam("token")
}

// webhookAmount accepts a JSON number or a numeric string.  Anything else is
// treated as absent.
func webhookAmount(r gjson.Result) *float64 {
    switch r.Type {
    case gjson.Number:
        v := r.Float()
        return &v
    case gjson.String:
        if v, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64); err == nil {
            return &v
        }
    }
    return nil
}

// parseWebhook maps a provider payload to the service input.  Providers
// disagree on types (amounts as strings, ids as numbers), so fields are read
// leniently.
func parseWebhook(body []byte) service.WebhookPayload {
    str := func(path string) string { return strings.TrimSpace(gjson.GetBytes(body, path).String()) }
    return service.WebhookPayload{
        Reference:     str("reference"),
        Amount:        webhookAmount(gjson.GetBytes(body, "amount")),
        Status:        str("status"),
        TransactionID: str("transaction_id"),
        Channel:       str("channel"),
        PayerMsisdn:   str("payer_msisdn"),
        Provider:      str("provider"),
    }
}

// Webhook: POST /api/payments/webhook
//
// The token is verified before anything else; an unauthenticated call never
// reaches the store.
func (h *ReservationHandler) Webhook(c echo.Context) error {
    got := webhookToken(c)
    if h.WebhookToken == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.WebhookToken)) != 1 {
        return jsonError(c, http.StatusUnauthorized, "Unauthorized")
    }

    body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
    if err != nil {
        return jsonError(c, http.StatusBadRequest, "Invalid request body")
    }
    if !gjson.ValidBytes(body) {
        return jsonError(c, http.StatusBadRequest, "Invalid JSON")
    }

    res, err := h.Svc.ConfirmWebhook(c.Request().Context(), parseWebhook(body))
    switch {
    case errors.Is(err, service.ErrMissingReference):
        return jsonError(c, http.StatusBadRequest, "Missing reference")
    case errors.Is(err, service.ErrReservationNotFound):
        return jsonError(c, http.StatusNotFound, "Reservation not found for reference")
    case err != nil:
        return internalError(c, "payment webhook", err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "success":       true,
        "updated":       res.Updated,
        "reservationId": res.Reservation.ID,
        "status":        res.Reservation.Status,
    })
}
