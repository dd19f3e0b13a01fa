package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"finledger/internal/models"
	"finledger/pkg/config"

	"github.com/Role1776/gigago"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// gigachatOAuthURL issues the short-lived access tokens used by the direct
// REST calls. Tokens expire after roughly thirty minutes.
const gigachatOAuthURL = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"

// LLMService wraps the GigaChat API for document extraction, category
// inference, and the chat assistant.
type LLMService struct {
	client     *gigago.Client
	model      *gigago.GenerativeModel
	config     *config.GigaChatConfig
	logger     *zap.Logger
	httpClient *http.Client
	baseURL    string
	oauthURL   string

	mu          sync.Mutex
	accessToken string
}

func buildSystemInstruction() string {
	labels := make([]string, 0, len(predefinedCategories))
	for _, pc := range predefinedCategories {
		labels = append(labels, pc.Label)
	}

	return fmt.Sprintf(`You are a personal finance assistant inside a budgeting app. You have two jobs:

1. Extract transactions from financial documents (receipts, bank statements) into structured JSON.
2. Answer the user's questions about their spending, using the account and transaction context supplied with each request.

Extraction rules:
- Return ONLY a valid JSON array, no markdown fences, no commentary.
- Each element: {"date": "YYYY-MM-DD", "description": string, "amount": string, "currency": "ISO 4217", "category": string}.
- Amounts are magnitudes for receipts; for bank statements use a leading minus for money out.
- If the currency is not visible, use "USD".
- Categories must come from this list, or "Uncategorized": %s.
- Never invent transactions that are not in the document. If there are none, return [].

Chat rules:
- Be concise and practical. Refer to the user's actual numbers when they are in the context.
- Never state a balance that is not present in the supplied context.`, strings.Join(labels, ", "))
}

func NewLLMService(cfg *config.GigaChatConfig, logger *zap.Logger) (*LLMService, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}
	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel("GigaChat")
	model.SystemInstruction = buildSystemInstruction()
	model.Temperature = 0.2

	httpClient := &http.Client{}
	if cfg.InsecureSkipVerify {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	accessToken, err := getAccessToken(ctx, gigachatOAuthURL, cfg, httpClient, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}

	return &LLMService{
		client:      client,
		model:       model,
		config:      cfg,
		logger:      logger,
		httpClient:  httpClient,
		accessToken: accessToken,
		baseURL:     "https://gigachat.devices.sberbank.ru/api/v1",
		oauthURL:    gigachatOAuthURL,
	}, nil
}

// getAccessToken obtains an access token from the GigaChat OAuth endpoint,
// needed for file uploads and direct REST calls. The API key is expected to
// be Base64-encoded already.
func getAccessToken(ctx context.Context, oauthURL string, cfg *config.GigaChatConfig, httpClient *http.Client, logger *zap.Logger) (string, error) {
	formData := url.Values{}
	formData.Set("scope", cfg.Scope)

	req, err := http.NewRequestWithContext(ctx, "POST", oauthURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create OAuth request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", uuid.New().String())
	req.Header.Set("Authorization", "Basic "+cfg.APIKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		logger.Error("OAuth request failed",
			zap.Int("status", resp.StatusCode),
			zap.String("response", string(bodyBytes)),
		)
		return "", fmt.Errorf("OAuth failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var oauthResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&oauthResp); err != nil {
		return "", fmt.Errorf("failed to decode OAuth response: %w", err)
	}
	if oauthResp.AccessToken == "" {
		return "", fmt.Errorf("empty access token in OAuth response")
	}

	return oauthResp.AccessToken, nil
}

// ExtractTransactions sends the document to the vision endpoint and parses
// the returned JSON array of line items.
func (s *LLMService) ExtractTransactions(ctx context.Context, filePath string, isStatement bool) ([]RawItem, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	fileID, err := s.uploadFile(ctx, file, filepath.Base(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	docKind := "receipt"
	if isStatement {
		docKind = "bank statement"
	}
	prompt := fmt.Sprintf(`Extract every transaction from this %s.

Return ONLY a valid JSON array, no markdown fences, no commentary.
Each element: {"date": "YYYY-MM-DD", "description": string, "amount": string, "currency": string, "category": string}.
If the document contains no transactions, return [].`, docKind)

	content, err := s.visionCompletion(ctx, fileID, prompt)
	if err != nil {
		return nil, err
	}

	jsonStr, err := scrapeJSONArray(content)
	if err != nil {
		return nil, err
	}

	var items []RawItem
	if err := json.Unmarshal([]byte(jsonStr), &items); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w, content: %s", err, content)
	}

	s.logger.Info("Document extraction completed",
		zap.Int("items", len(items)),
		zap.Bool("statement", isStatement),
	)
	return items, nil
}

// InferCategory asks the model for a single best-guess category label for a
// transaction description. The resolver's predefined-list gate decides
// whether the answer becomes a real category.
func (s *LLMService) InferCategory(ctx context.Context, description string) (string, error) {
	labels := make([]string, 0, len(predefinedCategories))
	for _, pc := range predefinedCategories {
		labels = append(labels, pc.Label)
	}

	prompt := fmt.Sprintf(`Classify this transaction description into exactly one of these categories: %s.

Description: %q

Reply with the category name only, nothing else. Reply "Uncategorized" if none fits.`,
		strings.Join(labels, ", "), description)

	resp, err := s.model.Generate(ctx, []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return strings.Trim(strings.TrimSpace(resp.Choices[0].Message.Content), `"'.`), nil
}

// ChatContext carries the user's financial snapshot into a chat turn.
type ChatContext struct {
	History      []gigago.Message
	Profile      string
	Summary      *InsightsSummary
	Transactions []models.Transaction
	Accounts     []models.Account
}

// GenerateChatResponse answers a chat message with the user's accounts and
// recent transactions as grounding context.
func (s *LLMService) GenerateChatResponse(ctx context.Context, chatCtx ChatContext, message string) (string, error) {
	var b strings.Builder
	if chatCtx.Profile != "" {
		fmt.Fprintf(&b, "User profile: %s\n", chatCtx.Profile)
	}
	if chatCtx.Summary != nil {
		fmt.Fprintf(&b, "Totals: income %s, expenses %s, net %s\n",
			chatCtx.Summary.TotalIncome, chatCtx.Summary.TotalExpenses, chatCtx.Summary.Net)
	}
	for _, acc := range chatCtx.Accounts {
		fmt.Fprintf(&b, "Account %q (%s): balance %s\n", acc.Title, acc.Type, acc.CurrentBalance)
	}
	for i, tx := range chatCtx.Transactions {
		if i >= 50 {
			break
		}
		fmt.Fprintf(&b, "%s %s %s %s (%s)\n",
			tx.Date.Format("2006-01-02"), tx.Type, tx.Signed(), tx.Description, tx.Category)
	}

	messages := append([]gigago.Message{}, chatCtx.History...)
	messages = append(messages, gigago.Message{
		Role:    gigago.RoleUser,
		Content: fmt.Sprintf("Context:\n%s\nQuestion: %s", b.String(), message),
	})

	resp, err := s.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (s *LLMService) token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

func (s *LLMService) refreshToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	accessToken, err := getAccessToken(ctx, s.oauthURL, s.config, s.httpClient, s.logger)
	if err != nil {
		return err
	}
	s.accessToken = accessToken
	return nil
}

// postAuthorized sends the payload with the current access token. A 401
// means the token expired mid-run, so it is refreshed and the request is
// replayed once from the buffered payload.
func (s *LLMService) postAuthorized(ctx context.Context, endpoint, contentType string, payload []byte) (*http.Response, error) {
	send := func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+s.token())
		return s.httpClient.Do(req)
	}

	resp, err := send()
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	bodyBytes, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	s.logger.Warn("GigaChat rejected access token, refreshing",
		zap.String("response", string(bodyBytes)),
	)

	if err := s.refreshToken(ctx); err != nil {
		return nil, fmt.Errorf("request failed with 401, token refresh also failed: %w (original error: %s)", err, string(bodyBytes))
	}
	return send()
}

// uploadFile uploads a file to GigaChat and returns the file ID for vision
// requests.
func (s *LLMService) uploadFile(ctx context.Context, fileReader io.Reader, fileName string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	// "general" purpose allows using the file in generation requests.
	if err := writer.WriteField("purpose", "general"); err != nil {
		return "", fmt.Errorf("failed to write purpose field: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		switch ext {
		case ".pdf":
			mimeType = "application/pdf"
		case ".jpg", ".jpeg":
			mimeType = "image/jpeg"
		case ".png":
			mimeType = "image/png"
		default:
			mimeType = "application/octet-stream"
		}
	}

	part, err := writer.CreatePart(map[string][]string{
		"Content-Type":        {mimeType},
		"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName)},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, fileReader); err != nil {
		return "", fmt.Errorf("failed to copy file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	resp, err := s.postAuthorized(ctx, s.baseURL+"/files", writer.FormDataContentType(), body.Bytes())
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var uploadResp struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return uploadResp.ID, nil
}

// visionCompletion runs a chat completion with a file attachment via the
// REST API; the gigago client does not expose attachments.
func (s *LLMService) visionCompletion(ctx context.Context, fileID, prompt string) (string, error) {
	requestBody := map[string]interface{}{
		"model": "GigaChat",
		"messages": []map[string]interface{}{
			{
				"role":        "user",
				"content":     prompt,
				"attachments": [][]string{{fileID}},
			},
		},
		"temperature": 0.2,
		"stream":      false,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := s.postAuthorized(ctx, s.baseURL+"/chat/completions", "application/json", jsonData)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("vision API failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var visionResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&visionResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(visionResp.Choices) == 0 {
		return "", fmt.Errorf("no response from Vision API")
	}

	return strings.TrimSpace(visionResp.Choices[0].Message.Content), nil
}

// scrapeJSONArray extracts the JSON array from a model response that may be
// wrapped in markdown fences or surrounded by commentary.
func scrapeJSONArray(content string) (string, error) {
	jsonStart := strings.Index(content, "[")
	jsonEnd := strings.LastIndex(content, "]")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd < jsonStart {
		lower := strings.ToLower(content)
		if containsAny(lower, "no transactions", "no financial", "empty") {
			return "[]", nil
		}
		return "", fmt.Errorf("invalid response format: %s", content)
	}

	jsonStr := content[jsonStart : jsonEnd+1]
	jsonStr = strings.TrimSpace(jsonStr)
	jsonStr = strings.TrimPrefix(jsonStr, "```json")
	jsonStr = strings.TrimPrefix(jsonStr, "```")
	jsonStr = strings.TrimSuffix(jsonStr, "```")
	return strings.TrimSpace(jsonStr), nil
}

func (s *LLMService) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	return nil
}
