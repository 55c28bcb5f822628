package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"scene-engine/internal/llm"
)

// DefaultModel is sent when the model getter returns nothing.
const DefaultModel = "gpt-4o-mini"

// Handler applies one action. Payload is the action object (e.g. {"action":"add_object", "type":"cube", ...}).
// Returns an error to report to the user; the agent will still process remaining actions.
type Handler func(payload map[string]interface{}) error

// Offline handles a request without a language model. It returns the summary for the terminal.
type Offline func(userMessage string) (string, error)

// Agent turns natural language into scene edits via an LLM and a registry of action handlers.
// Without a client, or when the client fails, requests go to the offline handler if one is set.
type Agent struct {
	client   llm.Client
	getModel func() string
	handlers map[string]Handler
	offline  Offline
	state    func() string
	log      *slog.Logger
}

// New returns an Agent that uses the given LLM client and model getter. client may be nil.
// Register handlers with RegisterHandler before calling Run.
func New(client llm.Client, getModel func() string) *Agent {
	if getModel == nil {
		getModel = func() string { return "" }
	}
	return &Agent{
		client:   client,
		getModel: getModel,
		handlers: make(map[string]Handler),
		log:      slog.Default(),
	}
}

// SetLogger replaces the logger used to report client failures.
func (a *Agent) SetLogger(l *slog.Logger) {
	if l != nil {
		a.log = l
	}
}

// SetOffline installs the handler used when no client is configured or the client fails.
func (a *Agent) SetOffline(h Offline) {
	a.offline = h
}

// SetState installs a function describing the current scene; its text is appended to every
// prompt so the model can refer to existing object ids.
func (a *Agent) SetState(f func() string) {
	a.state = f
}

// RegisterHandler adds a handler for the given action type (e.g. "add_object", "run_cmd").
func (a *Agent) RegisterHandler(actionType string, h Handler) {
	a.handlers[actionType] = h
}

// Run sends the user message to the LLM, parses the JSON response, and applies each action.
// Returns a short summary for the terminal log, or an error.
func (a *Agent) Run(ctx context.Context, userMessage string) (summary string, err error) {
	if a.client == nil {
		if a.offline == nil {
			return "", llm.ErrNoClient
		}
		return a.offline(userMessage)
	}
	model := a.getModel()
	if model == "" {
		model = DefaultModel
	}
	prompt := userMessage
	if a.state != nil {
		if st := a.state(); st != "" {
			prompt += "\n\nCurrent scene:\n" + st
		}
	}
	reply, err := a.client.Complete(ctx, model, buildSystemPrompt(), prompt)
	if err != nil {
		if a.offline == nil || ctx.Err() != nil {
			return "", err
		}
		a.log.Warn("llm request failed, using offline parser", "err", err)
		return a.offline(userMessage)
	}
	actions, parseErr := parseActions(reply)
	if parseErr != nil {
		return "", fmt.Errorf("LLM response invalid: %w", parseErr)
	}
	return a.apply(actions), nil
}

func (a *Agent) apply(actions []interface{}) string {
	var applied int
	var messages []string
	for i, raw := range actions {
		payload, ok := raw.(map[string]interface{})
		if !ok {
			messages = append(messages, fmt.Sprintf("action %d: invalid object", i+1))
			continue
		}
		actionType, _ := payload["action"].(string)
		if actionType == "" {
			messages = append(messages, fmt.Sprintf("action %d: missing action", i+1))
			continue
		}
		h, ok := a.handlers[actionType]
		if !ok {
			messages = append(messages, fmt.Sprintf("action %d: unknown action %q", i+1, actionType))
			continue
		}
		if err := h(payload); err != nil {
			messages = append(messages, fmt.Sprintf("action %d (%s): %v", i+1, actionType, err))
			continue
		}
		applied++
	}
	if applied > 0 && len(messages) == 0 {
		return fmt.Sprintf("Done. Applied %d action(s).", applied)
	}
	if len(messages) > 0 {
		return strings.Join(messages, "; ")
	}
	return "No actions to apply."
}

func buildSystemPrompt() string {
	return "You are a 3D scene editor. The user types natural language; you reply with exactly one JSON object of the form {\"actions\":[...]} and nothing else. No markdown, no code block, no explanation.\n\n" +
		"Object types: cube, sphere, cylinder, cone, car, robot, suit, airplane. An object may instead reference a glTF asset by path or URL.\n" +
		"Colors are hex strings like \"#ff0000\". Scale is one number. Positions are [x,y,z] with y up.\n\n" +
		"Actions:\n" +
		"- add_object: {\"action\":\"add_object\",\"type\":\"robot\",\"model\":\"\",\"asset\":\"\",\"position\":[x,y,z],\"scale\":1,\"color\":\"#00ffff\",\"id\":\"optional\"}\n" +
		"- add_objects: {\"action\":\"add_objects\",\"type\":\"cube|sphere|cylinder|cone|random\",\"count\":N,\"pattern\":\"grid|line|random\",\"spacing\":2,\"origin\":[x,y,z],\"scale\":1,\"color\":\"#ffffff\"}. Use for many objects at once.\n" +
		"- remove_object: {\"action\":\"remove_object\",\"id\":\"...\"}\n" +
		"- set_scale: {\"action\":\"set_scale\",\"id\":\"...\",\"scale\":2}\n" +
		"- set_position: {\"action\":\"set_position\",\"id\":\"...\",\"position\":[x,y,z]} or {\"action\":\"set_position\",\"id\":\"...\",\"axis\":\"y\",\"value\":3}\n" +
		"- set_color: {\"action\":\"set_color\",\"id\":\"...\",\"color\":\"#ff8800\"}\n" +
		"- set_hidden_parts: {\"action\":\"set_hidden_parts\",\"id\":\"...\",\"parts\":[\"Part_1\"]}\n" +
		"- set_simulation: {\"action\":\"set_simulation\",\"id\":\"...\",\"type\":\"arc_reactor_blast|hover|rotate\",\"active\":true,\"speed\":1,\"scale\":1}\n" +
		"- clear_simulation: {\"action\":\"clear_simulation\",\"id\":\"...\"}\n" +
		"- run_cmd: {\"action\":\"run_cmd\",\"args\":[\"subcommand\",\"arg1\",...]}. Args are the tokens that would follow \"cmd \".\n\n" +
		"Available run_cmd commands: list, parts <id>, save [path], load <path>, clear, retry [ref], grid --show|--hide, fps --show|--hide.\n\n" +
		"Rules:\n" +
		"- Only act on existing objects by the ids the user names; never invent ids for them.\n" +
		"- For \"make the suit fire its arc reactor\" use set_simulation with type arc_reactor_blast and active true.\n" +
		"- For \"spawn 20 cubes\" use ONE add_objects action, not many add_object entries.\n" +
		"- Reply with only the JSON object."
}

var fence = regexp.MustCompile("^```\\w*\\n?")

// parseActions extracts the "actions" array from the LLM reply. Tolerates markdown, extra text, and single-action form.
func parseActions(reply string) ([]interface{}, error) {
	reply = strings.TrimSpace(reply)
	// Strip markdown code block if present
	if strings.HasPrefix(reply, "```") {
		reply = fence.ReplaceAllString(reply, "")
		reply = strings.TrimSuffix(reply, "```")
		reply = strings.TrimSpace(reply)
	}
	// Extract the first complete JSON object (in case there's text before/after)
	start := strings.Index(reply, "{")
	if start < 0 {
		return nil, fmt.Errorf("no JSON object in response")
	}
	reply = reply[start:]
	depth := 0
	end := -1
	inString, escaped := false, false
	for i, c := range reply {
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				end = i + 1
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		return nil, fmt.Errorf("unbalanced JSON braces")
	}
	reply = reply[:end]

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(reply), &raw); err != nil {
		return nil, err
	}
	if arr, ok := raw["actions"].([]interface{}); ok {
		return arr, nil
	}
	// Single object in "actions" (e.g. LLM returned {"actions": {...}})
	if obj, ok := raw["actions"].(map[string]interface{}); ok {
		return []interface{}{obj}, nil
	}
	// Top-level single action: {"action": "add_object", ...}
	if _, hasAction := raw["action"]; hasAction {
		return []interface{}{raw}, nil
	}
	return nil, fmt.Errorf("missing actions array (reply had no \"actions\" or \"action\" object)")
}
