package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	apihttp "github.com/dsjohal14/sitesearch/internal/http"
	"github.com/spf13/cobra"
)

func newQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <text...>",
		Short: "Run one search through the gateway and print the JSON response",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, router, err := buildRouter(cmd)
			if err != nil {
				return err
			}

			payload, err := json.Marshal(apihttp.SearchRequest{Query: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			out := w.Body.String()
			var pretty bytes.Buffer
			if err := json.Indent(&pretty, w.Body.Bytes(), "", "  "); err == nil {
				out = pretty.String()
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(out))

			if w.Code != http.StatusOK {
				return fmt.Errorf("search returned status %d", w.Code)
			}
			return nil
		},
	}
}
