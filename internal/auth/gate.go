package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"
)

// State is a position in the sign-in flow.
type State string

const (
	StateAnonymous     State = "ANONYMOUS"
	StateOtpSent       State = "OTP_SENT"
	StateAuthenticated State = "AUTHENTICATED"
)

// OtpValidity is how long an issued code stays valid.
const OtpValidity = 5 * time.Minute

const (
	otpSubject  = "Your OTP for Global Stock Tracker"
	otpBodyTmpl = "Your one-time password (OTP) is: %s\n\nIt is valid for 5 minutes."
)

var (
	ErrNoActiveRequest = errors.New("no OTP has been requested")
	ErrExpired         = errors.New("OTP has expired, please request a new one")
	ErrMismatch        = errors.New("invalid OTP")
	ErrConfigMissing   = errors.New("email is not configured")
	ErrInvalidState    = errors.New("already signed in")
	ErrEmptyEmail      = errors.New("email address is required")
)

// Mailer delivers a single plain-text message.
type Mailer interface {
	Configured() bool
	Send(to, subject, body string) error
}

// Gate is the one-time-password state machine for a single session.
// Callers serialize access; the gate holds no lock of its own.
type Gate struct {
	mailer Mailer

	state     State
	email     string
	code      string
	issuedAt  time.Time
	expiresAt time.Time

	// Now and NewCode are replaceable in tests.
	Now     func() time.Time
	NewCode func() (string, error)
}

// NewGate creates an anonymous gate that dispatches codes through mailer.
func NewGate(mailer Mailer) *Gate {
	return &Gate{
		mailer:  mailer,
		state:   StateAnonymous,
		Now:     time.Now,
		NewCode: RandomCode,
	}
}

// RandomCode returns a uniformly random 6-digit code in [100000, 999999].
func RandomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func (g *Gate) State() State { return g.state }

// Email returns the address of the pending or signed-in user.
func (g *Gate) Email() string { return g.email }

// ExpiresAt returns the expiry of the outstanding code, zero when none.
func (g *Gate) ExpiresAt() time.Time { return g.expiresAt }

func (g *Gate) Authenticated() bool { return g.state == StateAuthenticated }

// Configured reports whether codes can be dispatched at all.
func (g *Gate) Configured() bool {
	return g.mailer != nil && g.mailer.Configured()
}

// RequestOtp issues a fresh code and mails it. A re-request replaces any
// earlier code. On dispatch failure the state is left unchanged and the
// transport error is returned as is.
func (g *Gate) RequestOtp(email string) error {
	if !g.Configured() {
		return ErrConfigMissing
	}
	if g.state == StateAuthenticated {
		return ErrInvalidState
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmptyEmail
	}

	code, err := g.NewCode()
	if err != nil {
		return err
	}
	if err := g.mailer.Send(email, otpSubject, fmt.Sprintf(otpBodyTmpl, code)); err != nil {
		log.Printf("[ERROR] send otp to %s: %v", email, err)
		return err
	}

	now := g.Now()
	g.state = StateOtpSent
	g.email = email
	g.code = code
	g.issuedAt = now
	g.expiresAt = now.Add(OtpValidity)
	log.Printf("[INFO] otp sent to %s, expires %s", email, g.expiresAt.Format(time.RFC3339))
	return nil
}

// VerifyOtp checks code against the outstanding one. Expiry is checked
// before the comparison; a failed check keeps the code usable.
func (g *Gate) VerifyOtp(code string) error {
	switch g.state {
	case StateAnonymous:
		return ErrNoActiveRequest
	case StateAuthenticated:
		return ErrInvalidState
	}
	if g.Now().After(g.expiresAt) {
		return ErrExpired
	}
	if strings.TrimSpace(code) != g.code {
		return ErrMismatch
	}
	g.state = StateAuthenticated
	log.Printf("[INFO] %s signed in", g.email)
	return nil
}

// Logout clears the session from any state.
func (g *Gate) Logout() {
	g.state = StateAnonymous
	g.email = ""
	g.code = ""
	g.issuedAt = time.Time{}
	g.expiresAt = time.Time{}
}
