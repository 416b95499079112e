// Package dataprocessing implements the tabular pipeline behind the CSV desk:
// loading delimited-text files into in-memory tables, normalizing date
// columns, filtering by exact date and category, grouping rows into date-wise
// summaries, encoding tables back to CSV, and computing positional
// complements for the delete simulation.
//
// Tables are read-only after loading; every transformation produces a derived
// copy so the original stays available for complement computation.
package dataprocessing
