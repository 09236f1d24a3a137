package mysql

const insertSearchSQL = `
INSERT INTO search_log
  (destination, check_in, check_out, adults, rooms, source, total_found, total_returned, duration_ms)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Newest first; matches idx_search_log_created.
const recentSearchesSQL = `
SELECT
  id,
  destination,
  DATE_FORMAT(check_in, '%Y-%m-%d'),
  DATE_FORMAT(check_out, '%Y-%m-%d'),
  adults,
  rooms,
  source,
  total_found,
  total_returned,
  duration_ms,
  created_at
FROM search_log
ORDER BY created_at DESC, id DESC
LIMIT ?
`
