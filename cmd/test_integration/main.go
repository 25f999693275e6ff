// Command test_integration drives a running fuxi server through a full
// harmonization round trip.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

var baseURL = "http://localhost:8080"

const lucidExport = `Id,Name,Shape Library,Page ID,Contained By,Line Source,Line Destination,Text Area 1
1,Page,,,,,,Page 1
2,Rectangle,Standard,1,,,,Finance
3,Process,Flowchart,1,2,,,SAP ECC
4,Process,Flowchart,1,2,,,General Ledger
5,Line,,1,,3,4,
`

type step struct {
	name   string
	method string
	path   string
	body   io.Reader
	status int
}

func main() {
	if u := os.Getenv("FUXI_URL"); u != "" {
		baseURL = strings.TrimRight(u, "/")
	}
	if !waitForServer(30 * time.Second) {
		fmt.Println("FAILED: server did not become healthy")
		os.Exit(1)
	}

	project := fmt.Sprintf("smoke-%d", time.Now().Unix())
	steps := []step{
		{"Upload Lucid export", http.MethodPost, "/api/digital-enterprise/" + project + "/lucid", strings.NewReader(lucidExport), http.StatusCreated},
		{"Run harmonization", http.MethodPost, "/api/harmonization/run", jsonBody(map[string]string{"mode": "all", "project_id": project}), http.StatusOK},
		{"Read future graph", http.MethodGet, "/api/harmonization/graph?mode=future", nil, http.StatusOK},
		{"Suggest connections", http.MethodPost, "/api/harmonization/connections", jsonBody(map[string]float64{"threshold": 0.5}), http.StatusOK},
		{"Detect clusters", http.MethodGet, "/api/harmonization/clusters", nil, http.StatusOK},
		{"Read project view", http.MethodGet, "/api/digital-enterprise/" + project, nil, http.StatusOK},
		{"Scrape metrics", http.MethodGet, "/metrics", nil, http.StatusOK},
	}

	fmt.Println("Starting Integration Test...")
	for i, s := range steps {
		fmt.Printf("%d. %s...\n", i+1, s.name)
		if !sendRequest(s) {
			fmt.Printf("FAILED: %s\n", s.name)
			os.Exit(1)
		}
		fmt.Printf("PASSED: %s\n", s.name)
	}
}

func waitForServer(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return true
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	return false
}

func jsonBody(v any) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func sendRequest(s step) bool {
	req, err := http.NewRequest(s.method, baseURL+s.path, s.body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	if strings.HasSuffix(s.path, "/lucid") {
		req.Header.Set("Content-Type", "text/csv")
	} else {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != s.status {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}
	if len(respBody) > 300 {
		respBody = append(respBody[:300], "..."...)
	}
	fmt.Printf("Response: %s\n", string(respBody))
	return true
}
