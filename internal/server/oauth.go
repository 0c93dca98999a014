package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// ConsentResult contains the outcome of the Google consent flow.
type ConsentResult struct {
	Token *oauth2.Token
	err   error
}

func (o *ConsentResult) Error() error {
	return o.err
}

// ConsentHandler handles the OAuth2 authorization code callback during admin
// setup. Implements the Handler interface for registration with a Router.
type ConsentHandler struct {
	config      *oauth2.Config
	state       string
	resultChan  chan ConsentResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewConsentHandler creates a consent handler with the given OAuth2 config and
// state token. The state token should be cryptographically random for CSRF
// protection.
func NewConsentHandler(config *oauth2.Config, state string) *ConsentHandler {
	return &ConsentHandler{
		config:     config,
		state:      state,
		resultChan: make(chan ConsentResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *ConsentHandler) Routes() []string {
	return []string{"/youtube-oauth2-callback"}
}

// ServeHTTP handles the consent callback request.
//
// Validates the state parameter, exchanges the authorization code for tokens,
// and sends the result through the result channel. Only the first callback is
// processed; replays are rejected.
func (h *ConsentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	state := r.URL.Query().Get("state")
	if state != h.state {
		err := fmt.Errorf("invalid state parameter")
		h.Send(ConsentResult{err: err})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		errParam := r.URL.Query().Get("error")
		errDesc := r.URL.Query().Get("error_description")
		err := fmt.Errorf("authorization failed: %s - %s", errParam, errDesc)
		h.Send(ConsentResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.config.Exchange(context.Background(), code)
	if err != nil {
		h.Send(ConsentResult{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.Send(ConsentResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #ff0000; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Authorization Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`)
}

// Send sends the consent result through the channel (only once).
func (h *ConsentHandler) Send(result ConsentResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *ConsentHandler) Result() <-chan ConsentResult {
	return h.resultChan
}
