package services

import (
	"context"

	"golang.org/x/sync/singleflight"

	"catalogconsole/internal/apiclient"
	"catalogconsole/internal/apperr"
	"catalogconsole/internal/domain"
	applog "catalogconsole/internal/log"
	"catalogconsole/internal/metrics"
	"catalogconsole/internal/session"
)

// AuthAPI is the upstream auth endpoint set.
type AuthAPI interface {
	Login(ctx context.Context, payload domain.LoginPayload) (*domain.User, apiclient.Credentials, error)
	Me(ctx context.Context) (*domain.User, error)
	Logout(ctx context.Context) error
}

type AuthService struct {
	api      AuthAPI
	sessions *session.Manager
	metrics  *metrics.ConsoleMetrics

	resolving singleflight.Group
}

func NewAuthService(api AuthAPI, sessions *session.Manager, m *metrics.ConsoleMetrics) *AuthService {
	return &AuthService{api: api, sessions: sessions, metrics: m}
}

func (s *AuthService) Sessions() *session.Manager { return s.sessions }

// Resolve runs who-am-i for a session that has not been resolved yet.
// Parallel requests for one session share a single upstream call.
func (s *AuthService) Resolve(ctx context.Context, sess *session.Session) session.AuthState {
	if st := sess.Auth(); st.Resolved {
		return st
	}
	v, _, _ := s.resolving.Do(sess.ID, func() (any, error) {
		if st := sess.Auth(); st.Resolved {
			return st, nil
		}
		sess.UpdateAuth(func(a *session.AuthState) { a.BeginResolve() })

		u, err := s.api.Me(apiclient.WithCredentials(ctx, sess.Credentials()))
		var st session.AuthState
		if err != nil {
			s.metrics.IncResolution(metrics.OutcomeFailure)
			st = sess.UpdateAuth(func(a *session.AuthState) { a.ResolveRejected(apperr.PublicMessage(err)) })
		} else {
			s.metrics.IncResolution(metrics.OutcomeSuccess)
			st = sess.UpdateAuth(func(a *session.AuthState) { a.ResolveFulfilled(u) })
		}
		s.persist(ctx, sess, "resolve")
		return st, nil
	})
	return v.(session.AuthState)
}

// Login sends the credentials upstream. A rejection keeps any prior user.
func (s *AuthService) Login(ctx context.Context, sess *session.Session, email, password string) (*domain.User, error) {
	sess.UpdateAuth(func(a *session.AuthState) { a.BeginLogin() })

	u, creds, err := s.api.Login(ctx, domain.LoginPayload{CompanyEmail: email, Password: password})
	if err == nil && u == nil {
		err = apperr.New(apperr.CodeUpstream, apperr.FallbackMessage)
	}
	if err != nil {
		sess.UpdateAuth(func(a *session.AuthState) { a.LoginRejected(apperr.PublicMessage(err)) })
		return nil, err
	}

	sess.SetCredentials(creds)
	sess.UpdateAuth(func(a *session.AuthState) { a.LoginFulfilled(u) })
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "save session")
	}
	return u, nil
}

// Logout ends the upstream session. On failure the local session is untouched.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session) error {
	sess.UpdateAuth(func(a *session.AuthState) { a.BeginLogout() })

	if err := s.api.Logout(apiclient.WithCredentials(ctx, sess.Credentials())); err != nil {
		sess.UpdateAuth(func(a *session.AuthState) { a.LogoutRejected(apperr.PublicMessage(err)) })
		return err
	}
	sess.UpdateAuth(func(a *session.AuthState) { a.LogoutFulfilled() })
	return s.sessions.Reset(ctx, sess)
}

// Expire reacts to an AuthExpired error: the next request resolves again.
func (s *AuthService) Expire(ctx context.Context, sess *session.Session) {
	sess.UpdateAuth(func(a *session.AuthState) { a.Unresolve() })
	s.persist(ctx, sess, "expire")
}

// persist saves the session record. The live session stays authoritative, so
// a failed write is logged and not returned.
func (s *AuthService) persist(ctx context.Context, sess *session.Session, step string) {
	if err := s.sessions.Save(ctx, sess); err != nil {
		applog.Error(nil, "session.save.fail", err, map[string]any{"step": step})
	}
}
