package graph

// Cypher query constants for Neo4j operations.
const (
	// CreateConstraintTableName ensures Table(name) is unique and indexed; every lookup goes through it.
	CreateConstraintTableName = `CREATE CONSTRAINT table_name IF NOT EXISTS FOR (t:Table) REQUIRE t.name IS UNIQUE`

	// ListTables returns every table with its columns.
	ListTables = `
MATCH (t:Table)
OPTIONAL MATCH (t)-[:HAS_COLUMN]->(c:Column)
WITH t, c ORDER BY c.name
RETURN t.name AS name,
       t.description AS description,
       collect(CASE WHEN c IS NULL THEN NULL ELSE {name: c.name, data_type: c.data_type} END) AS columns
ORDER BY name
`

	// GetTable fetches a single table by exact name.
	GetTable = `
MATCH (t:Table {name: $name})
RETURN t.name AS name, t.description AS description
`

	// TableColumns returns one row per owned column with the names of the CDEs attached to it.
	// IS_CDE_FOR is matched in either direction: seeded data points CDE->Column.
	TableColumns = `
MATCH (t:Table {name: $name})-[:HAS_COLUMN]->(c:Column)
OPTIONAL MATCH (c)-[:IS_CDE_FOR]-(cde:CDE)
RETURN elementId(c) AS id,
       c.name AS name,
       c.data_type AS data_type,
       collect(DISTINCT cde.name) AS cdes
`

	// TableRegions returns the region names a table belongs to.
	TableRegions = `
MATCH (t:Table {name: $name})-[:BELONGS_TO_REGION]->(r:Region)
RETURN DISTINCT r.name AS name
ORDER BY name
`

	// LineageNeighbors returns every table one LOADS_INTO/JOINS hop away from
	// any of $names, in either direction.
	LineageNeighbors = `
UNWIND $names AS origin
MATCH (t:Table {name: origin})-[:LOADS_INTO|JOINS]-(n:Table)
RETURN DISTINCT n.name AS name
`

	// LineageEdgesAmong returns each LOADS_INTO/JOINS relationship whose endpoints are both in $names.
	LineageEdgesAmong = `
MATCH (a:Table)-[r:LOADS_INTO|JOINS]->(b:Table)
WHERE a.name IN $names AND b.name IN $names
RETURN elementId(r) AS id,
       type(r) AS type,
       a.name AS source,
       b.name AS target,
       r.join_key AS join_key,
       r.lineage_type AS lineage_type
`

	// SchemaContext summarizes tables and columns for prompting.
	SchemaContext = `
MATCH (t:Table)-[:HAS_COLUMN]->(c:Column)
RETURN t.name AS table, collect({name: c.name, type: c.data_type}) AS columns
LIMIT 20
`

	// CountLabel counts nodes of a label. The label is spliced with fmt.Sprintf
	// from the fixed statistics categories, never from request input.
	CountLabel = "MATCH (n:`%s`) RETURN count(n) AS count"

	// DeleteAll removes every node and relationship. Used by the seed command only.
	DeleteAll = `MATCH (n) DETACH DELETE n`

	// CountNodes and CountRelationships verify a seeded graph.
	CountNodes         = `MATCH (n) RETURN count(n) AS count`
	CountRelationships = `MATCH ()-[r]->() RETURN count(r) AS count`

	// UpsertTables merges table nodes by name.
	UpsertTables = `
UNWIND $tables AS tbl
MERGE (t:Table {name: tbl.name})
SET t.description = tbl.description
`

	// UpsertColumns creates the columns owned by each table.
	UpsertColumns = `
UNWIND $columns AS col
MATCH (t:Table {name: col.table})
MERGE (t)-[:HAS_COLUMN]->(c:Column {name: col.name, table: col.table})
SET c.data_type = col.data_type
`

	// UpsertCDEs merges CDE nodes and attaches them to their columns.
	UpsertCDEs = `
UNWIND $cdes AS item
MERGE (cde:CDE {name: item.name})
SET cde.description = item.description
WITH cde, item
UNWIND item.columns AS ref
MATCH (:Table {name: ref.table})-[:HAS_COLUMN]->(c:Column {name: ref.column})
MERGE (cde)-[:IS_CDE_FOR]->(c)
`

	// UpsertRegions merges region nodes and links tables to them.
	UpsertRegions = `
UNWIND $regions AS item
MERGE (r:Region {name: item.name})
SET r.description = item.description
WITH r, item
UNWIND item.tables AS tableName
MATCH (t:Table {name: tableName})
MERGE (t)-[:BELONGS_TO_REGION]->(r)
`

	// UpsertLoads creates LOADS_INTO relationships between tables.
	UpsertLoads = `
UNWIND $edges AS edge
MATCH (src:Table {name: edge.source})
MATCH (dst:Table {name: edge.target})
MERGE (src)-[r:LOADS_INTO]->(dst)
SET r.lineage_type = edge.lineage_type
`

	// UpsertJoins creates JOINS relationships between tables.
	UpsertJoins = `
UNWIND $edges AS edge
MATCH (src:Table {name: edge.source})
MATCH (dst:Table {name: edge.target})
MERGE (src)-[r:JOINS {join_key: edge.join_key}]->(dst)
`
)
