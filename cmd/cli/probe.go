package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	apihttp "github.com/dsjohal14/sitesearch/internal/http"
	"github.com/dsjohal14/sitesearch/internal/libs/config"
	"github.com/dsjohal14/sitesearch/internal/libs/obs"
	"github.com/dsjohal14/sitesearch/internal/relay"
	"github.com/dsjohal14/sitesearch/internal/scope/search"
	"github.com/spf13/cobra"
)

// buildRouter assembles the same stack the API server runs
func buildRouter(cmd *cobra.Command) (*config.Config, http.Handler, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	level, _ := cmd.Flags().GetString("log-level")
	obs.InitLogger(level, "dev")

	backend := relay.New(cfg.Pinecone, obs.Logger("relay"), nil)
	orch := search.New(backend, cfg.Search, obs.Logger("search"))
	return cfg, apihttp.NewRouter(apihttp.NewHandler(orch, cfg, obs.Logger("cli"))), nil
}

func newProbeCmd() *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Exercise the gateway in-process and report pass/fail",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, router, err := buildRouter(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API key set: %t\nIndex set: %t\n\n",
				cfg.Pinecone.APIKey != "", cfg.Pinecone.Index != "")

			if failed := runProbe(cmd.OutOrStdout(), router, query, len(cfg.MissingBackend()) == 0); failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "data science", "query used for the live search check")
	return cmd
}

// check is one synthetic request and its expected outcome
type check struct {
	name   string
	method string
	path   string
	body   string
	want   int
	verify func(body []byte) string
}

func probeChecks(query string, configured bool) []check {
	payload, _ := json.Marshal(apihttp.SearchRequest{Query: query})

	searchWant := http.StatusOK
	if !configured {
		searchWant = http.StatusInternalServerError
	}

	return []check{
		{
			name: "diagnostics endpoint", method: http.MethodGet, path: "/diagnostics", want: http.StatusOK,
			verify: func(body []byte) string {
				var resp apihttp.DiagnosticsResponse
				if err := json.Unmarshal(body, &resp); err != nil {
					return err.Error()
				}
				return fmt.Sprintf("index=%s preset=%s top_k=%d", resp.Environment.IndexName, resp.Environment.Preset, resp.Environment.TopK)
			},
		},
		{
			name: "search with valid query", method: http.MethodPost, path: "/search", body: string(payload), want: searchWant,
			verify: func(body []byte) string {
				if !configured {
					return "backend not configured, expected service_configuration_error"
				}
				var resp apihttp.SearchResponse
				if err := json.Unmarshal(body, &resp); err != nil {
					return err.Error()
				}
				if len(resp.Results) == 0 {
					return "no results"
				}
				first := resp.Results[0]
				return fmt.Sprintf("%d result(s), first %q (%d%%)", len(resp.Results), first.Title, int(first.Score*100+0.5))
			},
		},
		{name: "CORS preflight", method: http.MethodOptions, path: "/search", want: http.StatusOK},
		{name: "empty query rejected", method: http.MethodPost, path: "/search", body: `{"query":"   "}`, want: http.StatusBadRequest},
		{name: "invalid JSON rejected", method: http.MethodPost, path: "/search", body: `{"query":`, want: http.StatusBadRequest},
		{name: "GET search rejected", method: http.MethodGet, path: "/search", want: http.StatusMethodNotAllowed},
	}
}

// runProbe prints one line per check and returns the number of failures
func runProbe(out io.Writer, router http.Handler, query string, configured bool) int {
	failed := 0
	for i, c := range probeChecks(query, configured) {
		req := httptest.NewRequest(c.method, c.path, strings.NewReader(c.body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		status := "PASS"
		if w.Code != c.want {
			status = "FAIL"
			failed++
		}
		detail := ""
		if c.verify != nil && w.Code == c.want {
			detail = c.verify(w.Body.Bytes())
		} else if w.Code != c.want {
			detail = strings.TrimSpace(w.Body.String())
		}
		if c.method == http.MethodOptions {
			detail = "Access-Control-Allow-Origin=" + w.Header().Get("Access-Control-Allow-Origin")
		}

		fmt.Fprintf(out, "%d. %-26s %s (status %d, want %d)", i+1, c.name, status, w.Code, c.want)
		if detail != "" {
			fmt.Fprintf(out, "  %s", detail)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "\n%d check(s), %d failed\n", len(probeChecks(query, configured)), failed)
	return failed
}
