// Copyright 2025 The LadybugDB Authors
// SPDX-License-Identifier: Apache-2.0

package csr

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/uuid"
	"github.com/ladybugdb/smallkgs/pkg/catalog"
	"github.com/ladybugdb/smallkgs/pkg/duckdbx"
	"github.com/ladybugdb/smallkgs/pkg/graphstd"
	"github.com/pkg/errors"
)

// sourceAlias is the attachment alias of the source database.
const sourceAlias = "src"

// GraphsTable is the metadata table listing converted relationships.
const GraphsTable = "csr_graphs"

// OffsetsTable returns the offsets table name for a rel label.
func OffsetsTable(rel string) string { return "csr_" + rel + "_offsets" }

// TargetsTable returns the targets table name for a rel label.
func TargetsTable(rel string) string { return "csr_" + rel + "_targets" }

// NodeMapTable returns the ordinal map table name for a node label.
func NodeMapTable(node string) string { return "csr_nodes_" + node }

// Options configures a Convert.
type Options struct {
	// SourceDB is the relational DuckDB file produced by the exporter.
	SourceDB string
	// OutputDB is the DuckDB file to write CSR tables into. It may equal
	// SourceDB, in which case the tables land in place.
	OutputDB string
	// StorageDir, when set, receives a storage directory with vertex and
	// CSR parquet files plus a graph.yaml manifest.
	StorageDir string
	// Table restricts the conversion to one edge table, named with or
	// without the edges_ prefix. Empty converts every edge table.
	Table string
	// Threads caps DuckDB's thread count. Zero keeps the engine default.
	Threads int
	// MemoryLimitGB caps DuckDB's memory use. Zero keeps the engine default.
	MemoryLimitGB int
}

// GraphReport describes one converted edge table.
type GraphReport struct {
	Rel         string
	From        string
	To          string
	SourceNodes int
	TargetNodes int
	Edges       int
	BuildID     string
}

// Report summarizes a Convert.
type Report struct {
	Graphs     []GraphReport
	StorageDir string
}

// Convert reads the relational form in opts.SourceDB and writes CSR
// adjacency tables into opts.OutputDB. Node ordinals follow ascending
// primary key order, so a node's ordinal equals its row position in a
// key-ordered scan of its table. When the two paths name the same file the
// tables land in place; otherwise the source is attached read-only.
func Convert(ctx context.Context, opts Options) (*Report, error) {
	if _, err := os.Stat(opts.SourceDB); err != nil {
		return nil, errors.Wrap(err, "source database")
	}
	inPlace, err := samePath(opts.SourceDB, opts.OutputDB)
	if err != nil {
		return nil, err
	}
	var dbOpts []duckdbx.Option
	if opts.Threads > 0 {
		dbOpts = append(dbOpts, duckdbx.WithThreads(opts.Threads))
	}
	if opts.MemoryLimitGB > 0 {
		dbOpts = append(dbOpts, duckdbx.WithMemoryLimitGB(opts.MemoryLimitGB))
	}
	db, err := duckdbx.Open(ctx, opts.OutputDB, dbOpts...)
	if err != nil {
		return nil, err
	}
	closeDB := sync.OnceValue(db.Close)
	defer closeDB()
	src := ""
	if !inPlace {
		if err := db.Attach(ctx, opts.SourceDB, sourceAlias, true); err != nil {
			return nil, err
		}
		src = sourceAlias
	}
	ok, err := catalog.Exists(ctx, db, src)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Errorf("%s has no %s catalog; re-run the exporter on this file", opts.SourceDB, catalog.TableName)
	}
	tables, err := catalog.Read(ctx, db, src)
	if err != nil {
		return nil, err
	}
	rels, err := resolveRels(tables, opts.Table)
	if err != nil {
		return nil, err
	}
	conv := &converter{
		db:      db,
		src:     src,
		tables:  tables,
		indexes: map[string]*nodeIndex{},
		written: map[string]bool{},
	}
	report := &Report{}
	for _, rel := range rels {
		g, err := conv.convertRel(ctx, rel)
		if err != nil {
			return nil, errors.Wrapf(err, "converting %s", rel.Name)
		}
		log.Printf("Created CSR tables for %s: %d edges over %d source nodes", g.Rel, g.Edges, g.SourceNodes)
		report.Graphs = append(report.Graphs, *g)
	}
	if opts.StorageDir != "" {
		if err := conv.writeStorage(ctx, opts.StorageDir, graphName(opts.SourceDB), report.Graphs); err != nil {
			return nil, err
		}
		log.Printf("Wrote storage directory: %s", opts.StorageDir)
		report.StorageDir = opts.StorageDir
	}
	return report, errors.Wrap(closeDB(), "closing output database")
}

// samePath reports whether two paths name the same file.
func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, errors.Wrapf(err, "resolving %s", a)
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, errors.Wrapf(err, "resolving %s", b)
	}
	return absA == absB, nil
}

// graphName derives the storage graph name from the source database path.
func graphName(dbPath string) string {
	base := filepath.Base(dbPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// resolveRels selects the edge tables to convert. An empty request selects
// all of them; otherwise the request names one, with or without the edges_
// prefix.
func resolveRels(tables []catalog.Table, requested string) ([]catalog.Table, error) {
	rels := catalog.Rels(tables)
	if len(rels) == 0 {
		return nil, errors.New("catalog lists no edge tables")
	}
	if requested == "" {
		return rels, nil
	}
	want := requested
	if !strings.HasPrefix(want, catalog.RelTablePrefix) {
		want = catalog.RelTablePrefix + want
	}
	for _, t := range rels {
		if t.Name == want {
			return []catalog.Table{t}, nil
		}
	}
	var known []string
	for _, t := range rels {
		known = append(known, t.Label)
	}
	return nil, errors.Errorf("unknown edge table %q; catalog has %s", requested, strings.Join(known, ", "))
}

// nodeIndex is the ordinal assignment of one node table: keys holds the
// primary keys in ascending order and ords maps each key to its position.
type nodeIndex struct {
	table catalog.Table
	pk    string
	keys  []int64
	ords  map[int64]int
}

type converter struct {
	db      *duckdbx.DB
	src     string
	tables  []catalog.Table
	indexes map[string]*nodeIndex
	written map[string]bool
}

// qualify prefixes a table reference with the source catalog alias.
func (c *converter) qualify(table string) string {
	if c.src == "" {
		return duckdbx.QuoteIdent(table)
	}
	return c.src + "." + duckdbx.QuoteIdent(table)
}

// index loads and caches the ordinal assignment of one node table.
func (c *converter) index(ctx context.Context, label string) (*nodeIndex, error) {
	if idx, ok := c.indexes[label]; ok {
		return idx, nil
	}
	t, ok := catalog.FindLabel(c.tables, catalog.KindNode, label)
	if !ok {
		return nil, errors.Errorf("catalog has no node table for label %s", label)
	}
	pk := t.PrimaryKey
	if pk == "" {
		pk = "id"
	}
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf("SELECT CAST(%s AS BIGINT) FROM %s ORDER BY %s",
		duckdbx.QuoteIdent(pk), c.qualify(t.Name), duckdbx.QuoteIdent(pk)))
	if err != nil {
		return nil, errors.Wrapf(err, "loading keys of %s", t.Name)
	}
	defer rows.Close()
	var keys []int64
	for rows.Next() {
		var k int64
		if err := rows.Scan(&k); err != nil {
			return nil, errors.Wrapf(err, "scanning key of %s", t.Name)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "loading keys of %s", t.Name)
	}
	ords, err := Ordinals(keys)
	if err != nil {
		return nil, errors.Wrapf(err, "indexing %s", t.Name)
	}
	idx := &nodeIndex{table: t, pk: pk, keys: keys, ords: ords}
	c.indexes[label] = idx
	return idx, nil
}

func (c *converter) convertRel(ctx context.Context, rel catalog.Table) (*GraphReport, error) {
	from, err := c.index(ctx, rel.From)
	if err != nil {
		return nil, err
	}
	to, err := c.index(ctx, rel.To)
	if err != nil {
		return nil, err
	}
	edges, err := c.scanEdges(ctx, rel, from, to)
	if err != nil {
		return nil, err
	}
	m, err := Build(len(from.keys), len(to.keys), edges)
	if err != nil {
		return nil, err
	}
	if err := c.writeMatrix(ctx, rel.Label, m); err != nil {
		return nil, err
	}
	for _, idx := range []*nodeIndex{from, to} {
		if err := c.writeNodeMap(ctx, idx); err != nil {
			return nil, err
		}
	}
	g := GraphReport{
		Rel:         rel.Label,
		From:        rel.From,
		To:          rel.To,
		SourceNodes: len(from.keys),
		TargetNodes: len(to.keys),
		Edges:       m.NumEdges(),
		BuildID:     uuid.NewString(),
	}
	if err := c.writeGraphRow(ctx, g); err != nil {
		return nil, err
	}
	return &g, nil
}

// scanEdges reads an edge table's endpoint pairs in (source, target) order
// and translates them to ordinals. Ordinals ascend with keys, so this order
// also groups edges by ascending source ordinal.
func (c *converter) scanEdges(ctx context.Context, rel catalog.Table, from, to *nodeIndex) ([]Edge, error) {
	rows, err := c.db.QueryContext(ctx, fmt.Sprintf("SELECT %s, %s FROM %s ORDER BY %s, %s",
		duckdbx.QuoteIdent(catalog.SourceColumn), duckdbx.QuoteIdent(catalog.TargetColumn),
		c.qualify(rel.Name),
		duckdbx.QuoteIdent(catalog.SourceColumn), duckdbx.QuoteIdent(catalog.TargetColumn)))
	if err != nil {
		return nil, errors.Wrapf(err, "scanning %s", rel.Name)
	}
	defer rows.Close()
	var edges []Edge
	for rows.Next() {
		var s, t int64
		if err := rows.Scan(&s, &t); err != nil {
			return nil, errors.Wrapf(err, "scanning edge of %s", rel.Name)
		}
		sOrd, ok := from.ords[s]
		if !ok {
			return nil, errors.Errorf("%s references missing %s key %d", rel.Name, from.table.Name, s)
		}
		tOrd, ok := to.ords[t]
		if !ok {
			return nil, errors.Errorf("%s references missing %s key %d", rel.Name, to.table.Name, t)
		}
		edges = append(edges, Edge{Source: sOrd, Target: tOrd})
	}
	return edges, rows.Err()
}

// writeMatrix replaces the offsets and targets tables for one rel.
func (c *converter) writeMatrix(ctx context.Context, label string, m *Matrix) error {
	offsets := OffsetsTable(label)
	if err := c.replaceTable(ctx, offsets, "(node BIGINT, first_edge BIGINT)"); err != nil {
		return err
	}
	if err := c.batchInsert(ctx, offsets, len(m.Offsets), func(i int) (any, any) {
		return int64(i), m.Offsets[i]
	}); err != nil {
		return err
	}
	targets := TargetsTable(label)
	if err := c.replaceTable(ctx, targets, "(pos BIGINT, node BIGINT)"); err != nil {
		return err
	}
	return c.batchInsert(ctx, targets, len(m.Targets), func(i int) (any, any) {
		return int64(i), m.Targets[i]
	})
}

// writeNodeMap replaces the ordinal map table for one node table, at most
// once per run so rels sharing an endpoint reuse it.
func (c *converter) writeNodeMap(ctx context.Context, idx *nodeIndex) error {
	name := NodeMapTable(idx.table.Label)
	if c.written[name] {
		return nil
	}
	if err := c.replaceTable(ctx, name, "(ord BIGINT, id BIGINT)"); err != nil {
		return err
	}
	if err := c.batchInsert(ctx, name, len(idx.keys), func(i int) (any, any) {
		return int64(i), idx.keys[i]
	}); err != nil {
		return err
	}
	c.written[name] = true
	return nil
}

// writeGraphRow upserts the metadata row for one converted relationship.
// Rows for other relationships survive single-table runs.
func (c *converter) writeGraphRow(ctx context.Context, g GraphReport) error {
	if _, err := c.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		relationship VARCHAR,
		from_table VARCHAR,
		to_table VARCHAR,
		source_nodes BIGINT,
		target_nodes BIGINT,
		edge_count BIGINT,
		build_id VARCHAR,
		built_at TIMESTAMP
	)`, GraphsTable)); err != nil {
		return errors.Wrap(err, "creating graphs table")
	}
	if _, err := c.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE relationship = ?", GraphsTable), g.Rel); err != nil {
		return errors.Wrapf(err, "clearing graphs row for %s", g.Rel)
	}
	_, err := c.db.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (?, ?, ?, ?, ?, ?, ?, ?)", GraphsTable),
		g.Rel, g.From, g.To, int64(g.SourceNodes), int64(g.TargetNodes), int64(g.Edges), g.BuildID, time.Now().UTC())
	return errors.Wrapf(err, "inserting graphs row for %s", g.Rel)
}

func (c *converter) replaceTable(ctx context.Context, name, columns string) error {
	if _, err := c.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", duckdbx.QuoteIdent(name))); err != nil {
		return errors.Wrapf(err, "dropping %s", name)
	}
	if _, err := c.db.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s %s", duckdbx.QuoteIdent(name), columns)); err != nil {
		return errors.Wrapf(err, "creating %s", name)
	}
	return nil
}

// batchInsert loads n two-column rows through a prepared statement inside
// one transaction.
func (c *converter) batchInsert(ctx context.Context, table string, n int, row func(i int) (any, any)) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrapf(err, "beginning insert into %s", table)
	}
	defer tx.Rollback()
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (?, ?)", duckdbx.QuoteIdent(table)))
	if err != nil {
		return errors.Wrapf(err, "preparing insert into %s", table)
	}
	defer stmt.Close()
	for i := 0; i < n; i++ {
		a, b := row(i)
		if _, err := stmt.ExecContext(ctx, a, b); err != nil {
			return errors.Wrapf(err, "inserting into %s", table)
		}
	}
	return errors.Wrapf(tx.Commit(), "committing %s", table)
}

// writeStorage materializes the storage directory for the converted
// relationships: one vertex parquet per referenced node table, the CSR
// arrays and any property columns per edge table, and the graph.yaml
// manifest.
func (c *converter) writeStorage(ctx context.Context, dir, name string, graphs []GraphReport) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "creating storage dir %s", dir)
	}
	w := graphstd.NewWriter(osfs.New(dir), name, &storageCopier{db: c.db, root: dir})
	seen := map[string]bool{}
	for _, g := range graphs {
		for _, label := range []string{g.From, g.To} {
			if seen[label] {
				continue
			}
			seen[label] = true
			idx, err := c.index(ctx, label)
			if err != nil {
				return err
			}
			entry := graphstd.VertexEntry{
				Table:      label,
				PrimaryKey: idx.pk,
				Count:      int64(len(idx.keys)),
			}
			query := fmt.Sprintf("SELECT * FROM %s ORDER BY %s", c.qualify(idx.table.Name), duckdbx.QuoteIdent(idx.pk))
			if err := w.WriteVertex(ctx, entry, query); err != nil {
				return err
			}
		}
	}
	for _, g := range graphs {
		props, err := c.propertiesQuery(ctx, g.Rel)
		if err != nil {
			return err
		}
		entry := graphstd.EdgeEntry{Rel: g.Rel, From: g.From, To: g.To, Count: int64(g.Edges)}
		offsets := fmt.Sprintf("SELECT node, first_edge FROM %s ORDER BY node", duckdbx.QuoteIdent(OffsetsTable(g.Rel)))
		targets := fmt.Sprintf("SELECT pos, node FROM %s ORDER BY pos", duckdbx.QuoteIdent(TargetsTable(g.Rel)))
		if err := w.WriteEdge(ctx, entry, offsets, targets, props); err != nil {
			return err
		}
	}
	return errors.Wrap(w.Finish(), "finishing storage")
}

// propertiesQuery builds the property scan for an edge table, or "" when
// the table has no property columns. The ORDER BY matches the edge scan so
// property rows line up with target positions; duplicate edges between the
// same endpoints are interchangeable.
func (c *converter) propertiesQuery(ctx context.Context, label string) (string, error) {
	table := catalog.RelTablePrefix + label
	cols, err := c.db.Columns(ctx, c.src, table)
	if err != nil {
		return "", err
	}
	var props []string
	for _, col := range cols {
		if col == catalog.SourceColumn || col == catalog.TargetColumn {
			continue
		}
		props = append(props, duckdbx.QuoteIdent(col))
	}
	if len(props) == 0 {
		return "", nil
	}
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s, %s",
		strings.Join(props, ", "), c.qualify(table),
		duckdbx.QuoteIdent(catalog.SourceColumn), duckdbx.QuoteIdent(catalog.TargetColumn)), nil
}

// storageCopier resolves layout-relative paths against the storage root and
// hands the copy to DuckDB's parquet writer.
type storageCopier struct {
	db   *duckdbx.DB
	root string
}

func (s *storageCopier) CopyParquet(ctx context.Context, query, relPath string) error {
	return s.db.CopyToParquet(ctx, query, filepath.Join(s.root, filepath.FromSlash(relPath)))
}

var _ graphstd.TableCopier = &storageCopier{}
