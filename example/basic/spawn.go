// Package basic shows the duplicate-key rewrite end to end: SpawnTable
// declares wave as a duplicate key, and spawn_clauser.go holds the output of
// `clauser generate` for it. Wave carries no duplicate keys and binds
// through reflection.
package basic

type Wave struct {
	Count int64   `clauser:"count"`
	Delay float64 `clauser:"delay"`
}

type SpawnTable struct {
	Name  string  `clauser:"name"`
	Notes *string `clauser:"notes"`
	Waves []Wave  `clauser:"wave,duplicate"`
}
