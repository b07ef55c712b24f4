package mysql

// Re-processing the same snapshot replaces the archived run.
const upsertRunSQL = `
INSERT INTO runs
  (id, fetched_at, processed_at, min_price, total_flights, summary)
VALUES
  (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  fetched_at    = VALUES(fetched_at),
  processed_at  = VALUES(processed_at),
  min_price     = VALUES(min_price),
  total_flights = VALUES(total_flights),
  summary       = VALUES(summary)
`

// Newest first; id breaks ties between runs processed in the same microsecond.
const listRunsSQL = `
SELECT id, fetched_at, processed_at, min_price, total_flights, summary
FROM runs
ORDER BY processed_at DESC, id DESC
LIMIT ?
`
