package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/feint/internal/adapters/http/api"
	"github.com/okian/feint/internal/domain/catalog"
	"github.com/okian/feint/internal/domain/scenario"
	"github.com/okian/feint/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// testDeps satisfies api.Dependencies over a catalog registry.
type testDeps struct {
	registry     *scenario.Registry
	bodyLogLimit int
}

func (d *testDeps) Registry() *scenario.Registry { return d.registry }
func (d *testDeps) BodyLogLimit() int            { return d.bodyLogLimit }

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} { return m.stats }

func newTestMux(t *testing.T, opts ...catalog.Option) *http.ServeMux {
	t.Helper()
	if err := logger.Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	reg, err := catalog.New(opts...)
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	deps := &testDeps{registry: reg, bodyLogLimit: 64 * 1024}
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}})
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newTestMux(t)

		Convey("Then the health endpoint should be accessible", func() {
			req := httptest.NewRequest("GET", "/healthz", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And the stats endpoint should serve JSON", func() {
			req := httptest.NewRequest("GET", "/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)

			var stats map[string]interface{}
			So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
			So(stats["started"], ShouldBeTrue)
		})

		Convey("And unknown paths should 404", func() {
			req := httptest.NewRequest("GET", "/unknown", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("And scenario routes should echo a request id", func() {
			req := httptest.NewRequest("GET", "/empty-json-response", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Header().Get("X-Request-Id"), ShouldNotBeEmpty)
		})

		Convey("And a caller-provided request id should round-trip", func() {
			req := httptest.NewRequest("GET", "/empty-json-response", nil)
			req.Header.Set("X-Request-Id", "fixed-id")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Header().Get("X-Request-Id"), ShouldEqual, "fixed-id")
		})
	})
}

func TestCannedRoutes(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newTestMux(t)

		cases := []struct {
			path        string
			status      int
			contentType string
			body        string
		}{
			{"/malformed-response", 200, "application/json", `{"status": "error", "message": "This is malformed JSON, missing a closing brace or invalid syntax", "data": [1, 2,`},
			{"/empty-json-response", 200, "application/json", `{}`},
			{"/non-json-with-json-header", 200, "application/json", `This is not JSON, but the header says it is!`},
			{"/empty-structured-json", 200, "application/json", `{"output": {"text": "", "tokens": 0, "model_response": null}, "details": {}, "metadata": []}`},
			{"/no-content-204", 204, "", ""},
			{"/html-like-response", 200, "text/html", `<html><body><h1>Hello from Test API!</h1><p>This is an HTML response.</p></body></html>`},
			{"/empty-body-200", 200, "", ""},
			{"/simple-unexpected-json", 200, "application/json", `{"status": "ok", "message": "This is a simple response."}`},
			{"/specific-llm-like-response", 200, "application/json", `{"choices":[{"message":{"role":"string","content":"string<>"},"finish_reason":"string","index":"string"}]}`},
		}

		for _, tc := range cases {
			tc := tc
			for _, method := range []string{"GET", "POST"} {
				method := method
				Convey("When sending "+method+" "+tc.path, func() {
					var body *strings.Reader
					if method == "POST" {
						body = strings.NewReader(`{"probe": true}`)
					} else {
						body = strings.NewReader("")
					}
					req := httptest.NewRequest(method, tc.path, body)
					w := httptest.NewRecorder()
					mux.ServeHTTP(w, req)

					Convey("Then the canned response should match exactly", func() {
						So(w.Code, ShouldEqual, tc.status)
						So(w.Header().Get("Content-Type"), ShouldEqual, tc.contentType)
						So(w.Body.String(), ShouldEqual, tc.body)
					})
				})
			}

			Convey("When repeating GET "+tc.path, func() {
				first := httptest.NewRecorder()
				mux.ServeHTTP(first, httptest.NewRequest("GET", tc.path, nil))
				second := httptest.NewRecorder()
				mux.ServeHTTP(second, httptest.NewRequest("GET", tc.path, nil))

				Convey("Then responses should be byte-identical", func() {
					So(second.Code, ShouldEqual, first.Code)
					So(second.Body.String(), ShouldEqual, first.Body.String())
					So(second.Header().Get("Content-Type"), ShouldEqual, first.Header().Get("Content-Type"))
				})
			})
		}
	})
}

func TestMethodGate(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newTestMux(t)

		Convey("When sending unsupported methods to a scenario route", func() {
			for _, method := range []string{"PUT", "DELETE", "PATCH"} {
				req := httptest.NewRequest(method, "/empty-json-response", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			}
		})

		Convey("When posting to the stats endpoint", func() {
			req := httptest.NewRequest("POST", "/stats", strings.NewReader("{}"))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestBodyLoggingNeverBreaksResponses(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newTestMux(t)

		Convey("When posting raw binary that is neither JSON nor form data", func() {
			payload := []byte{0x00, 0xff, 0x13, 0x37, 0xde, 0xad, 0xbe, 0xef}
			req := httptest.NewRequest("POST", "/simple-unexpected-json", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/octet-stream")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the canned response should be unaffected", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldEqual, `{"status": "ok", "message": "This is a simple response."}`)
			})
		})

		Convey("When posting form-encoded data", func() {
			req := httptest.NewRequest("POST", "/empty-json-response", strings.NewReader("a=1&b=two"))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, `{}`)
		})

		Convey("When posting malformed form data with a form content type", func() {
			req := httptest.NewRequest("POST", "/empty-json-response", strings.NewReader("%zz=broken"))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, `{}`)
		})

		Convey("When posting a body larger than the log limit", func() {
			deps := &testDeps{bodyLogLimit: 16}
			reg, err := catalog.New()
			So(err, ShouldBeNil)
			deps.registry = reg
			server := api.NewServer(deps, &mockStatsProvider{})
			smallMux := http.NewServeMux()
			server.Register(context.Background(), smallMux)

			big := strings.Repeat("x", 1<<10)
			req := httptest.NewRequest("POST", "/empty-json-response", strings.NewReader(big))
			w := httptest.NewRecorder()
			smallMux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, `{}`)
		})
	})
}

func TestEmptyResponsesLeakNoHeaders(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newTestMux(t)

		Convey("When requesting /no-content-204", func() {
			req := httptest.NewRequest("GET", "/no-content-204", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then status 204, no body, and no Content-Type", func() {
				So(w.Code, ShouldEqual, http.StatusNoContent)
				So(w.Body.Len(), ShouldEqual, 0)
				So(w.Header().Get("Content-Type"), ShouldBeEmpty)
			})
		})

		Convey("When requesting /empty-body-200", func() {
			req := httptest.NewRequest("POST", "/empty-body-200", strings.NewReader("ignored"))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then status 200, no body, and no Content-Type", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.Len(), ShouldEqual, 0)
				So(w.Header().Get("Content-Type"), ShouldBeEmpty)
			})
		})
	})
}

func TestNoResponseStall(t *testing.T) {
	Convey("Given a server with a short stall for testing", t, func() {
		mux := newTestMux(t, catalog.WithStallDuration(150*time.Millisecond))

		Convey("When the client waits out the stall", func() {
			start := time.Now()
			req := httptest.NewRequest("GET", "/no-response", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			elapsed := time.Since(start)

			Convey("Then the body should arrive only after the stall elapses", func() {
				So(elapsed, ShouldBeGreaterThanOrEqualTo, 150*time.Millisecond)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json")
				So(w.Body.String(), ShouldEqual, `{"message": "This response should not be seen by the client due to timeout."}`)
			})
		})

		Convey("When the client disconnects mid-stall", func() {
			ctx, cancel := context.WithCancel(context.Background())
			req := httptest.NewRequest("POST", "/no-response", strings.NewReader(`{"probe": true}`)).WithContext(ctx)
			w := httptest.NewRecorder()

			go func() {
				time.Sleep(20 * time.Millisecond)
				cancel()
			}()

			done := make(chan struct{})
			go func() {
				mux.ServeHTTP(w, req)
				close(done)
			}()

			Convey("Then the handler should return promptly without writing a body", func() {
				select {
				case <-done:
				case <-time.After(time.Second):
					t.Fatal("handler did not unblock after cancellation")
				}
				So(w.Body.Len(), ShouldEqual, 0)
			})
		})
	})
}
