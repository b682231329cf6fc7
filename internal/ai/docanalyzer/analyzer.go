package docanalyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared/constant"
)

const DefaultModel = "gpt-4o-mini"

const systemPrompt = `You are a senior technical recruiter reviewing a candidate's résumé against a job posting. Answer ONLY with a JSON object.`

// Document is a résumé submitted for analysis
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}

// Analyzer runs résumé gap analysis through OpenAI. PDFs are uploaded through the
// Files API and attached to the chat request; the caller releases them afterwards.
type Analyzer struct {
	client *openai.Client
	model  string
}

// NewAnalyzer creates a new analyzer. An empty model selects gpt-4o-mini.
func NewAnalyzer(apiKey, model string, opts ...option.RequestOption) *Analyzer {
	client := openai.NewClient(
		append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...,
	)

	if model == "" {
		model = DefaultModel
	}

	return &Analyzer{
		client: &client,
		model:  model,
	}
}

// Upload submits the document and returns the provider file id
func (a *Analyzer) Upload(ctx context.Context, doc Document) (string, error) {
	if len(doc.Data) == 0 {
		return "", errors.New("document is empty")
	}

	file, err := a.client.Files.New(ctx, openai.FileNewParams{
		File:    openai.File(bytes.NewReader(doc.Data), doc.Name, doc.ContentType),
		Purpose: openai.FilePurposeUserData,
	})
	if err != nil {
		return "", fmt.Errorf("openai file upload error: %w", err)
	}

	return file.ID, nil
}

// Analyze sends prompt, with the uploaded file attached when fileRef is set, and
// returns the raw model output
func (a *Analyzer) Analyze(ctx context.Context, fileRef, prompt string) (string, error) {
	parts := []openai.ChatCompletionContentPartUnionParam{
		{
			OfText: &openai.ChatCompletionContentPartTextParam{
				Type: constant.Text("text"),
				Text: prompt,
			},
		},
	}
	if fileRef != "" {
		parts = append(parts, openai.ChatCompletionContentPartUnionParam{
			OfFile: &openai.ChatCompletionContentPartFileParam{
				Type: constant.File("file"),
				File: openai.ChatCompletionContentPartFileFileParam{
					FileID: openai.String(fileRef),
				},
			},
		})
	}

	completion, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: parts,
					},
				},
			},
		},
		Model: openai.ChatModel(a.model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{
				Type: constant.JSONObject("json_object"),
			},
		},
		Temperature: openai.Float(0.2),
		MaxTokens:   openai.Int(2000),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat api error: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", errors.New("no response from openai")
	}

	return completion.Choices[0].Message.Content, nil
}

// Release deletes an uploaded file
func (a *Analyzer) Release(ctx context.Context, fileRef string) error {
	if fileRef == "" {
		return nil
	}
	if _, err := a.client.Files.Delete(ctx, fileRef); err != nil {
		return fmt.Errorf("openai file delete error: %w", err)
	}
	return nil
}
