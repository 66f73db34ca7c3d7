package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
)

var (
	baseURL  = flag.String("base", "http://localhost:3000/api", "API base URL")
	pdfPath  = flag.String("file", "", "PDF to load")
	question = flag.String("q", "What is this document about?", "question to ask")
	apiKey   = flag.String("key", os.Getenv("LLM_API_KEY"), "generation credential (sent as X-Api-Key)")
)

var client = &http.Client{Timeout: 5 * time.Minute}

// Pretty print JSON helper
func prettyPrint(body []byte) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Println(string(body))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func do(req *http.Request) (*http.Response, []byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	return resp, body, err
}

func sendJSON(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, *baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("X-Api-Key", *apiKey)
	}
	return do(req)
}

func sendFile(path string) (*http.Response, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(path)))
	header.Set("Content-Type", "application/pdf")
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequest(http.MethodPost, *baseURL+"/document/v1/candidate", &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return do(req)
}

func step(title string, call func() (*http.Response, []byte, error)) {
	color.Yellow("\n%s", title)
	resp, body, err := call()
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode >= 400 {
		color.Red("Status: %s", resp.Status)
	} else {
		color.Green("Status: %s", resp.Status)
	}
	prettyPrint(body)
}

func main() {
	flag.Parse()
	if *pdfPath == "" {
		color.Red("Usage: smoke -file document.pdf [-q question] [-key api-key]")
		os.Exit(2)
	}

	color.Cyan("🚀 Starting PDF chat smoke test against %s\n", *baseURL)

	step("1. Select candidate", func() (*http.Response, []byte, error) { return sendFile(*pdfPath) })
	step("2. Load document", func() (*http.Response, []byte, error) {
		return sendJSON(http.MethodPost, "/document/v1/load", nil)
	})
	step("3. Session status", func() (*http.Response, []byte, error) {
		return sendJSON(http.MethodGet, "/session/v1/status", nil)
	})
	step("4. Ask question", func() (*http.Response, []byte, error) {
		return sendJSON(http.MethodPost, "/chatbot/v1/ask", map[string]string{"question": *question})
	})
	step("5. Message log", func() (*http.Response, []byte, error) {
		return sendJSON(http.MethodGet, "/chatbot/v1/messages", nil)
	})

	color.Cyan("\n✅ Smoke test finished")
}
