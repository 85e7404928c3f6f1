package cache

import (
	"encoding/json"
	"fmt"
)

// Key names a persisted record.
type Key string

const (
	KeyCredential     Key = "user_key"
	KeyFaceAuth       Key = "opt_into_face_auth"
	KeyChangePassword Key = "change_password"

	// legacyCredentialKey is the spelling used by early installs. It is only
	// ever deleted, never read or written.
	legacyCredentialKey Key = "UserKey"
)

// Record is one of the persisted value types.
type Record interface {
	Key() Key
	valid() bool
}

// CachedCredential is the email/password pair unlocked by the biometric shortcut.
type CachedCredential struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

func (CachedCredential) Key() Key { return KeyCredential }

// Complete reports whether both fields are present.
func (c CachedCredential) Complete() bool {
	return c.User != "" && c.Password != ""
}

func (c CachedCredential) valid() bool { return true }

type Answer string

const (
	AnswerYes Answer = "YES"
	AnswerNo  Answer = "NO"
)

// FaceAuthPreference is the user's answer to the biometric opt-in prompt.
// Its absence means the user was never asked.
type FaceAuthPreference struct {
	Answer Answer `json:"answer"`
}

func (FaceAuthPreference) Key() Key { return KeyFaceAuth }

func (p FaceAuthPreference) valid() bool {
	return p.Answer == AnswerYes || p.Answer == AnswerNo
}

// ChangePasswordFlag is set when a password-reset email was sent and cleared
// on the next successful manual sign-in.
type ChangePasswordFlag struct {
	ChangePassword Flag `json:"change_password"`
}

func (ChangePasswordFlag) Key() Key { return KeyChangePassword }

func (ChangePasswordFlag) valid() bool { return true }

// Pending reports whether a reset is outstanding. A nil flag is not pending.
func (f *ChangePasswordFlag) Pending() bool {
	return f != nil && bool(f.ChangePassword)
}

// Flag is a boolean written as a JSON bool. It also accepts the string forms
// "true" and "false" found in stores written by older builds.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case bool:
		*f = Flag(value)
	case string:
		switch value {
		case "true":
			*f = true
		case "false", "":
			*f = false
		default:
			return fmt.Errorf("invalid flag %q", value)
		}
	case nil:
		*f = false
	default:
		return fmt.Errorf("invalid flag %s", string(b))
	}
	return nil
}

// newRecord returns an empty record of the type stored under key.
func newRecord(key Key) (Record, bool) {
	switch key {
	case KeyCredential:
		return &CachedCredential{}, true
	case KeyFaceAuth:
		return &FaceAuthPreference{}, true
	case KeyChangePassword:
		return &ChangePasswordFlag{}, true
	default:
		return nil, false
	}
}
