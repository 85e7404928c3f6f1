package client

import "context"

// Session is the signed-in account as seen by the client.
type Session struct {
	UID           string
	Email         string
	EmailVerified bool
	Phone         string
	Token         string
}

// Valid reports whether s identifies an account.
func (s Session) Valid() bool {
	return s.UID != "" && s.Token != ""
}

type IdentityBackend interface {
	Authenticate(ctx context.Context, identifier, secret string) (Session, error)
	CreateAccount(ctx context.Context, email, secret string) (Session, error)
	SendVerificationEmail(ctx context.Context, s Session) error
	SendPasswordReset(ctx context.Context, email string) error
	// SendPhoneOtp delivers a one-time code to an E.164 number and returns
	// the handle of the pending challenge.
	SendPhoneOtp(ctx context.Context, e164 string) (string, error)
	LinkPhoneCredential(ctx context.Context, s Session, handle, code string) (Session, error)
	SignInWithPhone(ctx context.Context, handle, code string) (Session, error)
	// SignInWithIDToken exchanges an identity token issued by a federated
	// provider, such as "google.com", for a session.
	SignInWithIDToken(ctx context.Context, provider, idToken string) (Session, error)
	UpdateEmail(ctx context.Context, s Session, newEmail string) error
	SignOut(ctx context.Context, s Session) error
	// Reload returns s refreshed from the backend, most notably EmailVerified.
	Reload(ctx context.Context, s Session) (Session, error)
}

// ProviderGoogle identifies Google as a federated sign-in provider.
const ProviderGoogle = "google.com"

// Field names a uniquely indexed attribute of a directory record.
type Field string

const (
	FieldEmail Field = "email"
	FieldPhone Field = "phone"
)

type DirectoryRecord struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type AccountDirectory interface {
	IsRegistered(ctx context.Context, field Field, value string) (bool, error)
	UpsertRecord(ctx context.Context, id string, rec DirectoryRecord) error
	// Record returns ErrNotFound when id has no record.
	Record(ctx context.Context, id string) (DirectoryRecord, error)
}
