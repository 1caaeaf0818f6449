package mcpserver

// ActionFormatContract describes the proposed-action JSON format that
// LLM consumers must follow when calling apply_actions.
const ActionFormatContract = `# IdeaBomb Proposed-Action Contract

The apply_actions tool takes a JSON array of action objects. Actions are
applied to one board page as a single atomic batch: node actions first,
then edge actions, so an edge may reference a node created earlier in the
same array by its batch-local id.

## Action objects

` + "```" + `json
[
  {"action": "create_node", "id": "plan", "type": "Todo",
   "content": "- Book flights\n- Reserve hotel"},
  {"action": "create_calendar_plan", "id": "dates",
   "content": "2026-06-01 09:00 Departure"},
  {"action": "create_edge", "from": "plan", "to": "dates"},
  {"action": "update_node", "content_match": "hotel", "color": "#ffd54f"},
  {"action": "delete_node", "content": "obsolete"},
  {"action": "organize_board"}
]
` + "```" + `

## Rules

1. **Batch-local ids.** The ` + "`" + `id` + "`" + ` on a create action is a symbolic name
   scoped to this batch. Use it in later ` + "`" + `create_edge` + "`" + ` actions; the server
   assigns the persisted id.
2. **Node types.** A bare ` + "`" + `create_node` + "`" + ` defaults to Note. Pass ` + "`" + `type` + "`" + `
   explicitly (Note, Todo, Calendar, Image, YouTube, Link) or use the
   dedicated action names: ` + "`" + `create_calendar_plan` + "`" + ` makes a Calendar,
   ` + "`" + `create_video` + "`" + ` a YouTube node, ` + "`" + `create_link` + "`" + ` a Link. Once the type
   is resolved, items, events, URLs, and video ids are parsed out of the
   content text: bullets fill a Todo's checklist, date/time tokens fill a
   Calendar's events.
3. **Targets for update/delete** may be a persisted node ` + "`" + `id` + "`" + ` or a
   case-insensitive ` + "`" + `content_match` + "`" + ` / ` + "`" + `content` + "`" + ` substring. Delete
   removes every match and its incident edges.
4. **Edges** must reference two distinct nodes on the page. Endpoints that
   cannot be resolved drop the edge, not the batch.
5. **organize_board** takes no arguments and reflows every node on the
   page onto a grid.
6. Created nodes carry a ` + "`" + `suggested` + "`" + ` status until a human accepts them.
   The last applied batch can be rolled back with undo_last_actions.
`
