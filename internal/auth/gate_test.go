package auth

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"
)

type fakeMailer struct {
	configured bool
	err        error
	sent       []string // "to|subject|body"
}

func (m *fakeMailer) Configured() bool { return m.configured }

func (m *fakeMailer) Send(to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to+"|"+subject+"|"+body)
	return nil
}

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestGate(m *fakeMailer) (*Gate, *time.Time) {
	now := base
	g := NewGate(m)
	g.Now = func() time.Time { return now }
	g.NewCode = func() (string, error) { return "123456", nil }
	return g, &now
}

func TestRandomCode(t *testing.T) {
	re := regexp.MustCompile(`^[1-9][0-9]{5}$`)
	for i := 0; i < 200; i++ {
		code, err := RandomCode()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !re.MatchString(code) {
			t.Fatalf("code %q is not a 6-digit number", code)
		}
	}
}

func TestEndToEnd(t *testing.T) {
	m := &fakeMailer{configured: true}
	g := NewGate(m)

	if err := g.RequestOtp("user@example.com"); err != nil {
		t.Fatalf("request: %v", err)
	}
	if len(m.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(m.sent))
	}
	parts := strings.SplitN(m.sent[0], "|", 3)
	if parts[0] != "user@example.com" || parts[1] != "Your OTP for Global Stock Tracker" {
		t.Errorf("unexpected envelope %q", m.sent[0])
	}
	code := regexp.MustCompile(`\d{6}`).FindString(parts[2])
	if code == "" {
		t.Fatalf("no 6-digit code in body %q", parts[2])
	}

	wrong := "000000"
	if code == wrong {
		wrong = "999999"
	}
	if err := g.VerifyOtp(wrong); !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
	if g.State() != StateOtpSent {
		t.Fatalf("expected OTP_SENT after mismatch, got %s", g.State())
	}
	if err := g.VerifyOtp(" " + code + " "); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !g.Authenticated() || g.Email() != "user@example.com" {
		t.Errorf("expected authenticated user@example.com, got %s %q", g.State(), g.Email())
	}
}

func TestVerify_ExpiryBeforeMismatch(t *testing.T) {
	g, now := newTestGate(&fakeMailer{configured: true})
	if err := g.RequestOtp("user@example.com"); err != nil {
		t.Fatal(err)
	}

	*now = base.Add(OtpValidity)
	if err := g.VerifyOtp("000000"); !errors.Is(err, ErrMismatch) {
		t.Errorf("at expiresAt the code is still live, got %v", err)
	}

	*now = base.Add(OtpValidity + time.Second)
	if err := g.VerifyOtp("123456"); !errors.Is(err, ErrExpired) {
		t.Errorf("expected ErrExpired with the correct code, got %v", err)
	}
	if err := g.VerifyOtp("000000"); !errors.Is(err, ErrExpired) {
		t.Errorf("expected ErrExpired with a wrong code, got %v", err)
	}
	if g.State() != StateOtpSent {
		t.Errorf("expiry must not change state, got %s", g.State())
	}
}

func TestLogoutThenVerify(t *testing.T) {
	g, _ := newTestGate(&fakeMailer{configured: true})
	if err := g.RequestOtp("user@example.com"); err != nil {
		t.Fatal(err)
	}
	if err := g.VerifyOtp("123456"); err != nil {
		t.Fatal(err)
	}
	g.Logout()
	if g.State() != StateAnonymous || g.Email() != "" || !g.ExpiresAt().IsZero() {
		t.Errorf("logout did not clear the session: %s %q %v", g.State(), g.Email(), g.ExpiresAt())
	}
	if err := g.VerifyOtp("123456"); !errors.Is(err, ErrNoActiveRequest) {
		t.Errorf("expected ErrNoActiveRequest, got %v", err)
	}
}

func TestRequest_Rerequest_OverwritesCode(t *testing.T) {
	g, now := newTestGate(&fakeMailer{configured: true})
	if err := g.RequestOtp("a@example.com"); err != nil {
		t.Fatal(err)
	}
	*now = base.Add(4 * time.Minute)
	g.NewCode = func() (string, error) { return "654321", nil }
	if err := g.RequestOtp("b@example.com"); err != nil {
		t.Fatal(err)
	}
	if want := base.Add(4*time.Minute + OtpValidity); !g.ExpiresAt().Equal(want) {
		t.Errorf("expiry = %v, want %v", g.ExpiresAt(), want)
	}
	if err := g.VerifyOtp("123456"); !errors.Is(err, ErrMismatch) {
		t.Errorf("old code should be replaced, got %v", err)
	}
	if err := g.VerifyOtp("654321"); err != nil {
		t.Errorf("new code should verify, got %v", err)
	}
	if g.Email() != "b@example.com" {
		t.Errorf("expected latest email, got %q", g.Email())
	}
}

func TestRequest_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mailer *fakeMailer
		email  string
		want   error
	}{
		{"not configured", &fakeMailer{configured: false}, "user@example.com", ErrConfigMissing},
		{"blank email", &fakeMailer{configured: true}, "   ", ErrEmptyEmail},
	}
	for _, tt := range tests {
		g, _ := newTestGate(tt.mailer)
		if err := g.RequestOtp(tt.email); !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
		if g.State() != StateAnonymous {
			t.Errorf("%s: state changed to %s", tt.name, g.State())
		}
	}

	if err := NewGate(nil).RequestOtp("user@example.com"); !errors.Is(err, ErrConfigMissing) {
		t.Errorf("nil mailer: expected ErrConfigMissing, got %v", err)
	}
}

func TestRequest_DispatchFailureLeavesState(t *testing.T) {
	m := &fakeMailer{configured: true}
	g, _ := newTestGate(m)
	if err := g.RequestOtp("user@example.com"); err != nil {
		t.Fatal(err)
	}

	sendErr := errors.New("535 5.7.8 Username and Password not accepted")
	m.err = sendErr
	g.NewCode = func() (string, error) { return "999999", nil }
	err := g.RequestOtp("other@example.com")
	if err != sendErr {
		t.Fatalf("expected the transport error verbatim, got %v", err)
	}
	if g.State() != StateOtpSent || g.Email() != "user@example.com" {
		t.Errorf("state changed after failed dispatch: %s %q", g.State(), g.Email())
	}
	if err := g.VerifyOtp("123456"); err != nil {
		t.Errorf("previous code should still verify, got %v", err)
	}
}

func TestAuthenticated_RejectsRequestAndVerify(t *testing.T) {
	g, _ := newTestGate(&fakeMailer{configured: true})
	g.RequestOtp("user@example.com")
	g.VerifyOtp("123456")

	if err := g.RequestOtp("user@example.com"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("request while signed in: expected ErrInvalidState, got %v", err)
	}
	if err := g.VerifyOtp("123456"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("verify while signed in: expected ErrInvalidState, got %v", err)
	}
	if !g.Authenticated() {
		t.Error("rejected calls must not sign the user out")
	}
}
