package driver

var IndexQueries = []string{
	"CREATE INDEX ON :System(id);",
	"CREATE INDEX ON :System(project_id);",
}

const (
	DeleteProjectGraphQuery = `
		MATCH (n:System {project_id: $project_id})
		DETACH DELETE n
	`

	SaveSystemsQuery = `
		UNWIND $systems AS s
		MERGE (n:System {project_id: $project_id, id: s.id})
		SET n.label = s.label,
			n.domain = s.domain,
			n.state = s.state,
			n.confidence = s.confidence,
			n.source_origin = s.source_origin,
			n.disposition = s.disposition,
			n.synced_at = $synced_at
		RETURN count(n) AS saved
	`

	SaveIntegrationsQuery = `
		UNWIND $edges AS e
		MATCH (a:System {project_id: $project_id, id: e.source})
		MATCH (b:System {project_id: $project_id, id: e.target})
		MERGE (a)-[r:INTEGRATES_WITH {id: e.id}]->(b)
		SET r.state = e.state,
			r.confidence = e.confidence,
			r.project_id = $project_id
		RETURN count(r) AS saved
	`

	GetProjectSystemsQuery = `
		MATCH (n:System {project_id: $project_id})
		RETURN n.id AS id, n.label AS label, n.domain AS domain, n.state AS state,
			n.confidence AS confidence, n.source_origin AS source_origin, n.disposition AS disposition
		ORDER BY id
	`

	GetProjectIntegrationsQuery = `
		MATCH (a:System {project_id: $project_id})-[r:INTEGRATES_WITH]->(b:System {project_id: $project_id})
		RETURN r.id AS id, a.id AS source, b.id AS target, r.state AS state, r.confidence AS confidence
		ORDER BY id
	`
)
