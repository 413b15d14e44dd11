package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestIssuer(t *testing.T) {
	Convey("Given an issuer with a fixed secret", t, func() {
		ctx := context.Background()
		issuer := NewIssuer("test-secret")

		Convey("When issuing a session", func() {
			id, token, err := issuer.Issue(ctx)

			Convey("Then it yields a fresh identity and a token", func() {
				So(err, ShouldBeNil)
				So(id.UserID, ShouldNotBeEmpty)
				So(token, ShouldNotBeEmpty)
			})

			Convey("And the token verifies back to the same identity", func() {
				got, err := issuer.Verify(ctx, token)
				So(err, ShouldBeNil)
				So(got.UserID, ShouldEqual, id.UserID)
			})

			Convey("And a second issue yields a different subject", func() {
				second, _, err := issuer.Issue(ctx)
				So(err, ShouldBeNil)
				So(second.UserID, ShouldNotEqual, id.UserID)
			})
		})

		Convey("When verifying garbage", func() {
			_, err := issuer.Verify(ctx, "not-a-token")

			Convey("Then it should be ErrInvalidToken", func() {
				So(err, ShouldWrap, ErrInvalidToken)
			})
		})

		Convey("When verifying a token signed with another secret", func() {
			other := NewIssuer("other-secret")
			_, token, err := other.Issue(ctx)
			So(err, ShouldBeNil)

			_, err = issuer.Verify(ctx, token)

			Convey("Then it should be ErrInvalidToken", func() {
				So(err, ShouldWrap, ErrInvalidToken)
			})
		})
	})

	Convey("Given an issuer with a short TTL and a movable clock", t, func() {
		ctx := context.Background()
		now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
		issuer := NewIssuer("test-secret",
			WithTTL(time.Hour),
			WithNow(func() time.Time { return now }),
		)

		_, token, err := issuer.Issue(ctx)
		So(err, ShouldBeNil)

		Convey("When the token is within its TTL", func() {
			now = now.Add(30 * time.Minute)
			_, err := issuer.Verify(ctx, token)

			Convey("Then it verifies", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When the token has expired", func() {
			now = now.Add(2 * time.Hour)
			_, err := issuer.Verify(ctx, token)

			Convey("Then it should be ErrInvalidToken", func() {
				So(err, ShouldWrap, ErrInvalidToken)
			})
		})
	})

	Convey("Given an issuer with no configured secret", t, func() {
		issuer := NewIssuer("")

		Convey("Then it still issues verifiable sessions", func() {
			ctx := context.Background()
			id, token, err := issuer.Issue(ctx)
			So(err, ShouldBeNil)
			got, err := issuer.Verify(ctx, token)
			So(err, ShouldBeNil)
			So(got.UserID, ShouldEqual, id.UserID)
		})
	})
}

func TestChallengeVerifiers(t *testing.T) {
	Convey("Given the permissive verifier", t, func() {
		Convey("Then it accepts anything, even empty tokens", func() {
			v := PermissiveVerifier{}
			So(v.VerifyChallenge(context.Background(), "", ""), ShouldBeNil)
			So(v.VerifyChallenge(context.Background(), "whatever", "1.2.3.4"), ShouldBeNil)
		})
	})

	Convey("Given an HTTP verifier against a stub endpoint", t, func() {
		ctx := context.Background()

		Convey("When the endpoint reports success", func() {
			var gotResponse, gotSecret string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = r.ParseForm()
				gotResponse = r.Form.Get("response")
				gotSecret = r.Form.Get("secret")
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"success": true}`))
			}))
			defer srv.Close()

			v := NewHTTPVerifier(srv.URL, "server-secret")
			err := v.VerifyChallenge(ctx, "widget-token", "1.2.3.4")

			Convey("Then verification passes and the form carries the token", func() {
				So(err, ShouldBeNil)
				So(gotResponse, ShouldEqual, "widget-token")
				So(gotSecret, ShouldEqual, "server-secret")
			})
		})

		Convey("When the endpoint rejects the token", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"success": false}`))
			}))
			defer srv.Close()

			v := NewHTTPVerifier(srv.URL, "server-secret")
			err := v.VerifyChallenge(ctx, "widget-token", "")

			Convey("Then it should be ErrChallengeFailed", func() {
				So(err, ShouldWrap, ErrChallengeFailed)
			})
		})

		Convey("When the token is empty", func() {
			v := NewHTTPVerifier("http://unreachable.invalid", "server-secret")
			err := v.VerifyChallenge(ctx, "", "")

			Convey("Then it fails without calling the endpoint", func() {
				So(err, ShouldWrap, ErrChallengeFailed)
			})
		})

		Convey("When the endpoint is unreachable", func() {
			v := NewHTTPVerifier("http://127.0.0.1:1", "server-secret")
			err := v.VerifyChallenge(ctx, "widget-token", "")

			Convey("Then it should be ErrChallengeFailed", func() {
				So(err, ShouldWrap, ErrChallengeFailed)
			})
		})
	})
}
