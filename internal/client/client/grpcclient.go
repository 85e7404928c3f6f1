package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/pudo/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const identityService = "pudo.identity.v1.IdentityService"

const (
	methodAuthenticate          = "/" + identityService + "/Authenticate"
	methodCreateAccount         = "/" + identityService + "/CreateAccount"
	methodSendVerificationEmail = "/" + identityService + "/SendVerificationEmail"
	methodSendPasswordReset     = "/" + identityService + "/SendPasswordReset"
	methodSendPhoneOtp          = "/" + identityService + "/SendPhoneOtp"
	methodLinkPhoneCredential   = "/" + identityService + "/LinkPhoneCredential"
	methodSignInWithPhone       = "/" + identityService + "/SignInWithPhone"
	methodSignInWithIDToken     = "/" + identityService + "/SignInWithIDToken"
	methodUpdateEmail           = "/" + identityService + "/UpdateEmail"
	methodSignOut               = "/" + identityService + "/SignOut"
	methodReload                = "/" + identityService + "/Reload"
)

// ErrorInfo reasons the backend attaches to refine a status code.
const (
	ReasonInvalidEmail          = "INVALID_EMAIL"
	ReasonInvalidPhone          = "INVALID_PHONE_NUMBER"
	ReasonWeakPassword          = "WEAK_PASSWORD"
	ReasonInvalidCode           = "INVALID_VERIFICATION_CODE"
	ReasonInvalidVerificationID = "INVALID_VERIFICATION_ID"
	ReasonProviderAlreadyLinked = "PROVIDER_ALREADY_LINKED"
	ReasonCredentialInUse       = "CREDENTIAL_ALREADY_IN_USE"
	ReasonEmailExists           = "EMAIL_EXISTS"
)

// GRPCBackend talks to the identity service. Messages are
// google.protobuf.Struct values, so no generated stubs are needed.
type GRPCBackend struct {
	endpointURL string
	timeout     time.Duration
	conn        grpc.ClientConnInterface
	closer      io.Closer
}

type sessionTokenKey struct{}

func withSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, sessionTokenKey{}, token)
}

func withOutgoingToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.SessionTokenHeaderName)
	md.Set(common.SessionTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (b *GRPCBackend) sessionTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if token, ok := ctx.Value(sessionTokenKey{}).(string); ok && token != "" {
		ctx = withOutgoingToken(ctx, token)
	}

	if _, ok := ctx.Deadline(); !ok && b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewGRPCBackend(endpointURL string, timeout time.Duration) (*GRPCBackend, error) {
	b := &GRPCBackend{endpointURL: endpointURL, timeout: timeout}
	if err := b.InitGRPCClient(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *GRPCBackend) InitGRPCClient() error {

	conn, err := grpc.NewClient(b.endpointURL, grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithUnaryInterceptor(b.sessionTokenInterceptor))
	if err != nil {
		return err
	}
	b.conn = conn
	b.closer = conn
	return nil
}

func (b *GRPCBackend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// Ping asks the standard health service whether the identity service is up.
func (b *GRPCBackend) Ping(ctx context.Context) error {
	resp, err := healthpb.NewHealthClient(b.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: identityService})
	if err != nil {
		return mapError(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}
	return nil
}

func (b *GRPCBackend) call(ctx context.Context, method string, fields map[string]any) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}

	reply := &structpb.Struct{}
	if err := b.conn.Invoke(ctx, method, req, reply); err != nil {
		return nil, mapError(err)
	}
	return reply, nil
}

func (b *GRPCBackend) sessionCall(ctx context.Context, method string, fields map[string]any) (Session, error) {
	reply, err := b.call(ctx, method, fields)
	if err != nil {
		return Session{}, err
	}
	return SessionFromToken(stringField(reply, "id_token"))
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func (b *GRPCBackend) Authenticate(ctx context.Context, identifier, secret string) (Session, error) {
	return b.sessionCall(ctx, methodAuthenticate, map[string]any{"email": identifier, "password": secret})
}

func (b *GRPCBackend) CreateAccount(ctx context.Context, email, secret string) (Session, error) {
	return b.sessionCall(ctx, methodCreateAccount, map[string]any{"email": email, "password": secret})
}

func (b *GRPCBackend) SendVerificationEmail(ctx context.Context, s Session) error {
	_, err := b.call(withSessionToken(ctx, s.Token), methodSendVerificationEmail, map[string]any{})
	return err
}

func (b *GRPCBackend) SendPasswordReset(ctx context.Context, email string) error {
	_, err := b.call(ctx, methodSendPasswordReset, map[string]any{"email": email})
	return err
}

func (b *GRPCBackend) SendPhoneOtp(ctx context.Context, e164 string) (string, error) {
	reply, err := b.call(ctx, methodSendPhoneOtp, map[string]any{"phone_number": e164})
	if err != nil {
		return "", err
	}

	handle := stringField(reply, "verification_id")
	if handle == "" {
		return "", fmt.Errorf("%s: empty verification id", methodSendPhoneOtp)
	}
	return handle, nil
}

func (b *GRPCBackend) LinkPhoneCredential(ctx context.Context, s Session, handle, code string) (Session, error) {
	return b.sessionCall(withSessionToken(ctx, s.Token), methodLinkPhoneCredential,
		map[string]any{"verification_id": handle, "code": code})
}

func (b *GRPCBackend) SignInWithPhone(ctx context.Context, handle, code string) (Session, error) {
	return b.sessionCall(ctx, methodSignInWithPhone, map[string]any{"verification_id": handle, "code": code})
}

func (b *GRPCBackend) SignInWithIDToken(ctx context.Context, provider, idToken string) (Session, error) {
	return b.sessionCall(ctx, methodSignInWithIDToken, map[string]any{"provider_id": provider, "provider_token": idToken})
}

func (b *GRPCBackend) UpdateEmail(ctx context.Context, s Session, newEmail string) error {
	_, err := b.call(withSessionToken(ctx, s.Token), methodUpdateEmail, map[string]any{"email": newEmail})
	return err
}

func (b *GRPCBackend) SignOut(ctx context.Context, s Session) error {
	_, err := b.call(withSessionToken(ctx, s.Token), methodSignOut, map[string]any{})
	return err
}

func (b *GRPCBackend) Reload(ctx context.Context, s Session) (Session, error) {
	return b.sessionCall(withSessionToken(ctx, s.Token), methodReload, map[string]any{})
}

func errorReason(st *status.Status) string {
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info.GetReason()
		}
	}
	return ""
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrUnavailable
	}

	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}

	reason := errorReason(st)

	switch st.Code() {
	case codes.Unauthenticated:
		return ErrWrongSecret
	case codes.NotFound:
		return ErrNotFound
	case codes.PermissionDenied:
		return ErrDisabled
	case codes.InvalidArgument:
		switch reason {
		case ReasonInvalidEmail, ReasonInvalidPhone:
			return ErrInvalidIdentifier
		case ReasonWeakPassword:
			return ErrWeakSecret
		case ReasonInvalidCode:
			return ErrInvalidCode
		case ReasonInvalidVerificationID:
			return ErrInvalidHandle
		}
	case codes.AlreadyExists:
		if reason == ReasonProviderAlreadyLinked {
			return ErrAlreadyLinked
		}
		return ErrAlreadyInUse
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	}
	return fmt.Errorf("rpc error: %w", err)
}
