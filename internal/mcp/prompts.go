package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("write_faq",
		mcp.WithPromptDescription("Write a FAQ section for a city, station or partner page and save it as a draft"),
		mcp.WithArgument("pageId",
			mcp.ArgumentDescription("ID of the page that gets the FAQ"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("What travellers ask about (e.g. luggage, schedules, terminal access)"),
		),
	), s.handleWriteFAQPrompt)
}

func (s *Server) handleWriteFAQPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	pageID := req.Params.Arguments["pageId"]
	topic := req.Params.Arguments["topic"]
	if topic == "" {
		topic = "buying tickets and travelling by bus"
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Write a FAQ for page %s", pageID),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Write a FAQ about %s for page %s. Follow these steps:

1. Use get_page with preview=true to read the current draft and its title.
2. Write 4 to 8 questions travellers actually ask, in the page language. Answers are short rich text (<p>...</p>).
3. Build the faq stream as JSON:
   [{"type": "faq", "value": {"title": "Preguntas frecuentes", "item": [{"question": "...", "answer": "<p>...</p>"}]}}]
4. Call validate_stream with stream "faq" and fix every reported path until it is valid.
5. Call save_draft with the page's current content plus streams.faq set to the validated stream.
6. Call get_structured_data with preview=true and check the FAQPage has one Question per item.

Do not publish; an editor reviews the draft first.`, topic, pageID),
				},
			},
		},
	}, nil
}
