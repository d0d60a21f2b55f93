// Package databaseplugins is the database connectivity core: the shared
// machinery that turns relational query results into structured records and
// manages vendor driver registrations across run scopes.
//
// # Key Packages
//
//	pkg/sqltype   - SQL type codes, canonical tagged values, the type
//	                mapper and the column matcher
//	pkg/access    - relational access surface; sqldb adapts database/sql
//	pkg/driverreg - shim-based driver registration, scoped release and
//	                best-effort vendor cleanup
//	pkg/record    - pooled records and the row-to-record reader
//	pkg/dialect   - vendor dialects (MySQL, PostgreSQL, Snowflake)
//	                binding drivers, DSNs and cleanup hooks
//	pkg/action    - argument setter and post-run query action
//	pkg/source    - streaming relational source
//	pkg/config    - YAML configuration structures and validation
//
// # Quick Start
//
// Stream a query as records:
//
//	cfg := &config.SourceConfig{
//	    ConnectionConfig: config.ConnectionConfig{
//	        ConnectionString: "mysql://db.example.com:3306/app",
//	        DriverName:       "mysql",
//	        User:             "reader",
//	    },
//	    Name:    "users",
//	    Query:   "SELECT id, name, created FROM users",
//	    Columns: []string{"id", "name", "created"},
//	}
//
//	src, err := sqlsource.New(cfg, driverreg.Scope("run-42"))
//	if err != nil { ... }
//	if err := src.Initialize(ctx); err != nil { ... }
//	defer src.Close()
//
//	stream, err := src.Read(ctx)
//	for rec := range stream.Records {
//	    // use rec, then rec.Release()
//	}
//
// The cmd/dbcore CLI exposes the same operations: preview, arguments,
// query and dialects.
package databaseplugins
