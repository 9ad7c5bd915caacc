package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/use-agent/webscout/models"
	"github.com/use-agent/webscout/signature"
)

func detectAntibotTool() mcp.Tool {
	return mcp.NewTool("detect_antibot",
		mcp.WithDescription("Fetch a page once and report which anti-bot protections are present, whether any is actively blocking, and the evidence behind each finding."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to check for anti-bot protection"),
		),
	)
}

type antibotResponse struct {
	Success        bool               `json:"success"`
	URL            string             `json:"url"`
	StatusCode     int                `json:"status_code"`
	RequestBlocked bool               `json:"request_blocked"`
	Detections     []models.Detection `json:"detections"`
	Summary        string             `json:"summary"`
}

func (h *handlers) handleDetectAntibot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targetURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}

	ev, used, err := h.client.Sample(ctx, sessionKey(ctx), targetURL, fetchOptionsFromRequest(request))
	if err != nil {
		return failureEnvelope(targetURL, used, err), nil
	}

	detections := signature.DetectAntiBot(ev.HTML, ev.StatusCode)

	return jsonResult(antibotResponse{
		Success:        true,
		URL:            targetURL,
		StatusCode:     ev.StatusCode,
		RequestBlocked: signature.Blocked(ev.StatusCode),
		Detections:     detections,
		Summary:        antibotSummary(detections),
	}), nil
}

func antibotSummary(detections []models.Detection) string {
	if len(detections) == 0 {
		return "No anti-bot protection detected."
	}
	var names, blocking []string
	for _, d := range detections {
		names = append(names, d.Name)
		if d.IsActivelyBlocking {
			blocking = append(blocking, d.Name)
		}
	}
	if len(blocking) > 0 {
		return fmt.Sprintf("Detected: %s. Actively blocking: %s.",
			strings.Join(names, ", "), strings.Join(blocking, ", "))
	}
	return fmt.Sprintf("Detected: %s. None actively blocking this request.", strings.Join(names, ", "))
}

func detectTechStackTool() mcp.Tool {
	return mcp.NewTool("detect_tech_stack",
		mcp.WithDescription("Fetch a page once and report the detected technology stack (CMS, e-commerce platform, analytics, frontend libraries, infrastructure), grouped by category."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to analyze"),
		),
	)
}

func (h *handlers) handleDetectTechStack(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targetURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}

	ev, used, err := h.client.Sample(ctx, sessionKey(ctx), targetURL, fetchOptionsFromRequest(request))
	if err != nil {
		return failureEnvelope(targetURL, used, err), nil
	}

	detections := signature.DetectTechnologies(ev.HTML)
	frameworks := signature.DetectFrameworks(ev.HTML)

	return jsonResult(map[string]any{
		"success":      true,
		"url":          targetURL,
		"status_code":  ev.StatusCode,
		"technologies": signature.GroupByCategory(detections),
		"frameworks":   frameworks,
		"total":        len(detections) + len(frameworks),
	}), nil
}

func analyzeDifficultyTool() mcp.Tool {
	return mcp.NewTool("analyze_scraping_difficulty",
		mcp.WithDescription("Fetch a page once with a basic request and estimate how hard it will be to scrape: anti-bot protections, JavaScript frameworks, and an overall 1-10 difficulty score."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to analyze"),
		),
	)
}

type difficultyResponse struct {
	Success    bool                        `json:"success"`
	URL        string                      `json:"url"`
	StatusCode int                         `json:"status_code"`
	Score      int                         `json:"score"`
	Rating     string                      `json:"rating"`
	AntiBot    []models.Detection          `json:"antibot"`
	Frameworks []models.FrameworkDetection `json:"frameworks"`
	Findings   []string                    `json:"findings"`
	TimingMs   int64                       `json:"timing_ms"`
}

func (h *handlers) handleAnalyzeDifficulty(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targetURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}

	ev, used, err := h.client.Sample(ctx, sessionKey(ctx), targetURL, fetchOptionsFromRequest(request))
	if err != nil {
		return failureEnvelope(targetURL, used, err), nil
	}

	antibot := signature.DetectAntiBot(ev.HTML, ev.StatusCode)
	frameworks := signature.DetectFrameworks(ev.HTML)
	score, findings := difficultyScore(ev, antibot, frameworks)

	return jsonResult(difficultyResponse{
		Success:    true,
		URL:        targetURL,
		StatusCode: ev.StatusCode,
		Score:      score,
		Rating:     difficultyRating(score),
		AntiBot:    antibot,
		Frameworks: frameworks,
		Findings:   findings,
		TimingMs:   ev.TimingMs,
	}), nil
}

// difficultyScore folds the classifier findings into a 1-10 estimate.
func difficultyScore(ev models.Evidence, antibot []models.Detection, frameworks []models.FrameworkDetection) (int, []string) {
	score := 1
	var findings []string

	for _, d := range antibot {
		switch {
		case d.IsActivelyBlocking:
			score += 4
			findings = append(findings, fmt.Sprintf("%s is actively blocking basic requests.", d.Name))
		case d.Confidence == models.ConfidenceHigh:
			score += 3
			findings = append(findings, fmt.Sprintf("%s challenge infrastructure is present.", d.Name))
		default:
			score += 1
			findings = append(findings, fmt.Sprintf("%s is deployed on this site.", d.Name))
		}
	}

	for _, fw := range frameworks {
		if fw.RenderingLikelyRequired {
			score += 2
			findings = append(findings, fmt.Sprintf("%s likely requires JavaScript rendering.", fw.Name))
			break
		}
	}

	if ev.Success && len(ev.TextContent) < 500 {
		score += 1
		findings = append(findings, "The plain fetch returned very little text.")
	}
	if !ev.Success {
		findings = append(findings, fmt.Sprintf("The basic request failed with HTTP %d.", ev.StatusCode))
	}

	if score > 10 {
		score = 10
	}
	if len(findings) == 0 {
		findings = append(findings, "No obstacles found; a basic request should work.")
	}
	return score, findings
}

func difficultyRating(score int) string {
	switch {
	case score <= 3:
		return "easy"
	case score <= 6:
		return "moderate"
	case score <= 8:
		return "hard"
	default:
		return "very_hard"
	}
}
