package mcpserver

// TreeFormatContract describes the JSON returned by get_tree and GET /api/tree.
const TreeFormatContract = `# Kinfolk Tree Format

get_tree returns an envelope:

` + "```" + `json
{
  "rootId": 1,
  "persons": 5,
  "connectors": 3,
  "droppedRefs": 0,
  "depth": 2,
  "tree": { ...node... }
}
` + "```" + `

## Node

` + "```" + `json
{
  "name": "Dzikri",
  "attributes": {
    "gender": "Male",
    "age": 60,
    "status": "alive",
    "id": 1,
    "isSpouseConnector": false,
    "phone": "",
    "address": "",
    "relation": "biological"
  },
  "children": [ ...node... ]
}
` + "```" + `

## Rules

1. The root is the person with no parents and the lowest id.
2. A person with spouses gets one connector child per spouse, in edge order.
   The connector holds exactly that spouse. If the person also has children,
   one more connector follows and holds all of them.
3. A person without spouses lists children directly.
4. A connector has an empty ` + "`" + `name` + "`" + ` and ` + "`" + `isSpouseConnector: true` + "`" + `.
   Everything else in its attributes is zero.
5. Spouse nodes are leaves; their own relatives are not expanded under the
   connector.
6. ` + "`" + `relation` + "`" + ` is the parent edge type used to reach the node and is
   omitted on the root and on spouses.
7. ` + "`" + `children` + "`" + ` is omitted on leaves.
8. When a person is its own ancestor the tree is unavailable and the tool
   returns "tree unavailable: cyclic graph". Edit the data to fix it.
`
