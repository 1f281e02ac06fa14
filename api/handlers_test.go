package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prasetyowira/qrlink/constant"
	"github.com/prasetyowira/qrlink/domain/payload"
	"github.com/prasetyowira/qrlink/domain/qrcode"
	"github.com/prasetyowira/qrlink/domain/shortener"
)

// Mock QR code service for testing
type MockQRCodeService struct {
	mock.Mock
}

func (m *MockQRCodeService) GenerateSVG(ctx context.Context, p payload.Payload, style qrcode.Style) (*qrcode.Result, error) {
	args := m.Called(ctx, p, style)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*qrcode.Result), args.Error(1)
}

func (m *MockQRCodeService) GeneratePNG(ctx context.Context, p payload.Payload, style qrcode.Style, size int) (*qrcode.Result, error) {
	args := m.Called(ctx, p, style, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*qrcode.Result), args.Error(1)
}

// Mock shortener service for testing
type MockShortenerService struct {
	mock.Mock
}

func (m *MockShortenerService) Shorten(ctx context.Context, longURL string) (*shortener.Link, error) {
	args := m.Called(ctx, longURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shortener.Link), args.Error(1)
}

func (m *MockShortenerService) RecentLinks(ctx context.Context, limit int) ([]*shortener.Link, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shortener.Link), args.Error(1)
}

func newTestHandler() (*Handler, *MockQRCodeService, *MockShortenerService) {
	qr := new(MockQRCodeService)
	sh := new(MockShortenerService)
	return NewHandler(qr, sh, 1024), qr, sh
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return httptest.NewRequest(method, target, bytes.NewBuffer(raw))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestNewHandler(t *testing.T) {
	handler, qr, sh := newTestHandler()

	assert.Equal(t, qr, handler.qr)
	assert.Equal(t, sh, handler.shortener)
	assert.Equal(t, 1024, handler.pngSize)
}

func TestQRCodeRequest_ToPayload(t *testing.T) {
	tests := []struct {
		name     string
		req      QRCodeRequest
		expected payload.Payload
	}{
		{"url", QRCodeRequest{Type: "url", URL: "https://example.com"}, payload.URL{URL: "https://example.com"}},
		{"wifi", QRCodeRequest{Type: "wifi", SSID: "Home", Password: "pw", Encryption: "WEP"},
			payload.WiFi{SSID: "Home", Password: "pw", Encryption: payload.EncryptionWEP}},
		{"wifi default encryption", QRCodeRequest{Type: "WiFi", SSID: "Home"},
			payload.WiFi{SSID: "Home", Encryption: payload.EncryptionWPA}},
		{"vcard", QRCodeRequest{Type: "vcard", Name: "Jane", Phone: "1", Email: "j@example.com", Organization: "Acme", Title: "CTO"},
			payload.VCard{Name: "Jane", Phone: "1", Email: "j@example.com", Organization: "Acme", Title: "CTO"}},
		{"sms", QRCodeRequest{Type: "sms", Phone: "+1", Message: "hi"}, payload.SMS{Phone: "+1", Message: "hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.req.toPayload()

			require.NoError(t, err)
			assert.Equal(t, tt.expected, p)
		})
	}
}

func TestQRCodeRequest_ToPayloadUnknownType(t *testing.T) {
	for _, kind := range []string{"", "email", "geo"} {
		p, err := QRCodeRequest{Type: kind}.toPayload()

		assert.Nil(t, p)
		var ve *payload.ValidationError
		require.True(t, errors.As(err, &ve), kind)
		assert.Equal(t, constant.MsgKindUnsupported, ve.Message("type"))
	}
}

func TestGenerateQRCode_Success(t *testing.T) {
	// Arrange
	handler, qr, _ := newTestHandler()
	body := QRCodeRequest{Type: "wifi", SSID: "Home", Password: "secret1", Encryption: "WPA", Foreground: "#112233"}

	qr.On("GenerateSVG", mock.Anything,
		payload.WiFi{SSID: "Home", Password: "secret1", Encryption: payload.EncryptionWPA},
		qrcode.Style{Foreground: "#112233"},
	).Return(&qrcode.Result{
		Kind:    payload.KindWiFi,
		Content: "WIFI:T:WPA;S:Home;P:secret1;;",
		SVG:     "<svg/>",
	}, nil)

	w := httptest.NewRecorder()

	// Act
	handler.GenerateQRCode(w, jsonRequest(t, http.MethodPost, constant.RouteQRCode, body))

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, constant.ContentTypeJSON, w.Header().Get(constant.HeaderContentType))

	var resp QRCodeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, payload.KindWiFi, resp.Type)
	assert.Equal(t, "WIFI:T:WPA;S:Home;P:secret1;;", resp.Content)
	assert.Equal(t, "<svg/>", resp.SVG)
	qr.AssertExpectations(t)
}

func TestGenerateQRCode_InvalidRequestBody(t *testing.T) {
	// Arrange
	handler, qr, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, constant.RouteQRCode, bytes.NewBufferString(`{"type": }`))
	w := httptest.NewRecorder()

	// Act
	handler.GenerateQRCode(w, req)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, constant.MsgInvalidRequestFormat, decodeError(t, w).Error)
	qr.AssertNotCalled(t, "GenerateSVG", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateQRCode_UnknownType(t *testing.T) {
	handler, qr, _ := newTestHandler()
	w := httptest.NewRecorder()

	handler.GenerateQRCode(w, jsonRequest(t, http.MethodPost, constant.RouteQRCode, QRCodeRequest{Type: "geo"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, constant.MsgValidationFailed, resp.Error)
	assert.Equal(t, []payload.FieldError{{Field: "type", Message: constant.MsgKindUnsupported}}, resp.Fields)
	qr.AssertNotCalled(t, "GenerateSVG", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateQRCode_ValidationError(t *testing.T) {
	// Arrange
	handler, qr, _ := newTestHandler()
	ve := &payload.ValidationError{}
	ve.Add("name", constant.MsgNameEmpty)
	ve.Add("foreground", constant.MsgColorInvalid)
	qr.On("GenerateSVG", mock.Anything, mock.Anything, mock.Anything).Return(nil, ve)

	w := httptest.NewRecorder()

	// Act
	handler.GenerateQRCode(w, jsonRequest(t, http.MethodPost, constant.RouteQRCode, QRCodeRequest{Type: "vcard", Foreground: "red"}))

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Len(t, resp.Fields, 2)
}

func TestGenerateQRCode_RenderError(t *testing.T) {
	handler, qr, _ := newTestHandler()
	qr.On("GenerateSVG", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.Join(qrcode.ErrRenderFailed, errors.New("data too long")))
	w := httptest.NewRecorder()

	handler.GenerateQRCode(w, jsonRequest(t, http.MethodPost, constant.RouteQRCode, QRCodeRequest{Type: "url", URL: "https://example.com"}))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, constant.MsgQRCodeFailed, decodeError(t, w).Error)
}

func TestGenerateQRCodePNG_Success(t *testing.T) {
	// Arrange
	handler, qr, _ := newTestHandler()
	png := []byte("\x89PNG\r\n\x1a\nrest")
	qr.On("GeneratePNG", mock.Anything, payload.SMS{Phone: "+15555550100"}, qrcode.Style{}, 1024).
		Return(&qrcode.Result{Kind: payload.KindSMS, Content: "SMSTO:+15555550100:", PNG: png}, nil)

	w := httptest.NewRecorder()

	// Act
	handler.GenerateQRCodePNG(w, jsonRequest(t, http.MethodPost, constant.RouteQRCodePNG, QRCodeRequest{Type: "sms", Phone: "+15555550100"}))

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, constant.ContentTypePNG, w.Header().Get(constant.HeaderContentType))
	assert.Equal(t, `attachment; filename="qrcode.png"`, w.Header().Get(constant.HeaderContentDisposition))
	assert.Equal(t, png, w.Body.Bytes())
	qr.AssertExpectations(t)
}

func TestGenerateQRCodePNG_ExplicitSize(t *testing.T) {
	handler, qr, _ := newTestHandler()
	qr.On("GeneratePNG", mock.Anything, mock.Anything, mock.Anything, 300).
		Return(&qrcode.Result{PNG: []byte("png")}, nil)
	w := httptest.NewRecorder()

	handler.GenerateQRCodePNG(w, jsonRequest(t, http.MethodPost, constant.RouteQRCodePNG, QRCodeRequest{Type: "url", URL: "https://example.com", Size: 300}))

	assert.Equal(t, http.StatusOK, w.Code)
	qr.AssertExpectations(t)
}

func TestShortenURL_Success(t *testing.T) {
	// Arrange
	handler, _, sh := newTestHandler()
	longURL := "https://example.com/long"
	sh.On("Shorten", mock.Anything, longURL).Return(&shortener.Link{
		LongURL:  longURL,
		ShortURL: "https://is.gd/abc123",
	}, nil)

	w := httptest.NewRecorder()

	// Act
	handler.ShortenURL(w, jsonRequest(t, http.MethodPost, constant.RouteShorten, ShortenRequest{URL: longURL}))

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp ShortenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, longURL, resp.LongURL)
	assert.Equal(t, "https://is.gd/abc123", resp.ShortURL)
	sh.AssertExpectations(t)
}

func TestShortenURL_InvalidRequestBody(t *testing.T) {
	handler, _, sh := newTestHandler()
	req := httptest.NewRequest(http.MethodPost, constant.RouteShorten, bytes.NewBufferString(`not json`))
	w := httptest.NewRecorder()

	handler.ShortenURL(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, constant.MsgInvalidRequestFormat, decodeError(t, w).Error)
	sh.AssertNotCalled(t, "Shorten", mock.Anything, mock.Anything)
}

func TestShortenURL_Errors(t *testing.T) {
	invalid := &payload.ValidationError{}
	invalid.Add("url", constant.MsgURLInvalid)

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", invalid, http.StatusBadRequest, constant.MsgValidationFailed},
		{"provider", &shortener.UpstreamError{StatusCode: 200, Body: "Error: blacklisted"}, http.StatusBadGateway, constant.MsgShortenProviderError},
		{"provider status", &shortener.UpstreamError{StatusCode: 503}, http.StatusBadGateway, constant.MsgShortenProviderError},
		{"transport", errors.New("dial tcp: timeout"), http.StatusInternalServerError, constant.MsgShortenFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			handler, _, sh := newTestHandler()
			sh.On("Shorten", mock.Anything, "https://example.com").Return(nil, tt.err)
			w := httptest.NewRecorder()

			// Act
			handler.ShortenURL(w, jsonRequest(t, http.MethodPost, constant.RouteShorten, ShortenRequest{URL: "https://example.com"}))

			// Assert
			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.message, resp.Error)
			assert.NotContains(t, w.Body.String(), "blacklisted")
		})
	}
}

func TestListLinks(t *testing.T) {
	// Arrange
	handler, _, sh := newTestHandler()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sh.On("RecentLinks", mock.Anything, 5).Return([]*shortener.Link{
		{ID: 1, LongURL: "https://example.com", ShortURL: "https://is.gd/a", Requests: 3, CreatedAt: now, UpdatedAt: now},
	}, nil)

	w := httptest.NewRecorder()

	// Act
	handler.ListLinks(w, httptest.NewRequest(http.MethodGet, constant.RouteLinks+"?limit=5", nil))

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	var links []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &links))
	require.Len(t, links, 1)
	assert.Equal(t, "https://is.gd/a", links[0]["short_url"])
	assert.Equal(t, 3.0, links[0]["requests"])
	assert.NotContains(t, links[0], "id")
}

func TestListLinks_DefaultLimitAndEmpty(t *testing.T) {
	handler, _, sh := newTestHandler()
	sh.On("RecentLinks", mock.Anything, 0).Return(nil, nil)
	w := httptest.NewRecorder()

	handler.ListLinks(w, httptest.NewRequest(http.MethodGet, constant.RouteLinks, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListLinks_InvalidLimit(t *testing.T) {
	handler, _, sh := newTestHandler()

	for _, limit := range []string{"abc", "0", "-3"} {
		w := httptest.NewRecorder()
		handler.ListLinks(w, httptest.NewRequest(http.MethodGet, constant.RouteLinks+"?limit="+limit, nil))

		assert.Equal(t, http.StatusBadRequest, w.Code, limit)
		assert.Equal(t, constant.MsgLimitInvalid, decodeError(t, w).Fields[0].Message)
	}
	sh.AssertNotCalled(t, "RecentLinks", mock.Anything, mock.Anything)
}

func TestListLinks_ServiceError(t *testing.T) {
	handler, _, sh := newTestHandler()
	sh.On("RecentLinks", mock.Anything, 0).Return(nil, errors.New("db closed"))
	w := httptest.NewRecorder()

	handler.ListLinks(w, httptest.NewRequest(http.MethodGet, constant.RouteLinks, nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, constant.MsgListLinksFailed, decodeError(t, w).Error)
}

func TestWriteJSONError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteJSONError(w, "Something broke", http.StatusTeapot)

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.JSONEq(t, `{"error":"Something broke","code":418}`, w.Body.String())
}
