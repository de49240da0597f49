// ABOUTME: Wires every Networkia tool, resource and prompt into an MCP server
// ABOUTME: Shared by the mcp subcommand and the handler tests
package handlers

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/networkia/networkia/agenda"
	"github.com/networkia/networkia/calexport"
)

// NewServer builds an MCP server exposing a's store.
func NewServer(a *agenda.Agenda, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "networkia",
		Version: version,
	}, nil)
	Register(server, a)
	return server
}

// Register adds the Networkia tools, resources and prompts to server.
func Register(server *mcp.Server, a *agenda.Agenda) {
	contactHandlers := NewContactHandlers(a)
	agendaHandlers := NewAgendaHandlers(a)
	vizHandlers := NewVizHandlers(a)
	resourceHandlers := NewResourceHandlers(a)
	promptHandlers := NewPromptHandlers(a)

	// Tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a new contact with an optional next meet date, cadence and circles",
	}, contactHandlers.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_contacts",
		Description: "Search for contacts by name or email, optionally within a circle",
	}, contactHandlers.FindContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_contact",
		Description: "Update an existing contact's information",
	}, contactHandlers.UpdateContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_next_meet",
		Description: "Set or clear a contact's next meet date and cadence",
	}, contactHandlers.SetNextMeet)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_contact_interaction",
		Description: "Log an interaction with a contact and update last contacted timestamp",
	}, contactHandlers.LogContactInteraction)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_note",
		Description: "Attach a note to a contact",
	}, contactHandlers.AddNote)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_contact",
		Description: "Delete a contact with its notes and interactions",
	}, contactHandlers.DeleteContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "upcoming_meets",
		Description: "List next meets and birthdays coming up, overdue meets included",
	}, agendaHandlers.UpcomingMeets)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "advance_next_meets",
		Description: "Roll stale recurring next meet dates forward and save them",
	}, agendaHandlers.AdvanceNextMeets)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "export_calendar",
		Description: "Export next meets and birthdays as an iCalendar (.ics) document",
	}, agendaHandlers.ExportCalendar)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_graph",
		Description: "Render circle membership as a GraphViz DOT or SVG graph",
	}, vizHandlers.GenerateGraph)

	// Resources
	server.AddResource(&mcp.Resource{
		URI:         resourceScheme + "contacts",
		Name:        "contacts",
		Description: "Every contact with its effective next meet",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: resourceScheme + "contacts/{id}",
		Name:        "contact",
		Description: "One contact with notes and recent interactions",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         resourceScheme + "upcoming",
		Name:        "upcoming",
		Description: "Next meets and birthdays in the default window",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         resourceScheme + "calendar.ics",
		Name:        "calendar",
		Description: "Calendar export of next meets and birthdays",
		MIMEType:    calexport.MIMEType,
	}, resourceHandlers.ReadResource)

	// Prompts
	server.AddPrompt(&mcp.Prompt{
		Name:        "contact-summary",
		Description: "Summarize a contact with notes and recent interactions",
		Arguments: []*mcp.PromptArgument{
			{Name: "contact_id", Description: "UUID of the contact", Required: true},
		},
	}, promptHandlers.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "weekly-checkin",
		Description: "Plan outreach for upcoming meets and birthdays",
		Arguments: []*mcp.PromptArgument{
			{Name: "days", Description: "Look-ahead window in days (default 7)"},
		},
	}, promptHandlers.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "reconnect-suggestions",
		Description: "Suggest people to reconnect with",
		Arguments: []*mcp.PromptArgument{
			{Name: "circle", Description: "Limit to one circle"},
		},
	}, promptHandlers.GetPrompt)
}
