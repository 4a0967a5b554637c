// Package report writes deduplication results.
//
// Every format carries one row per record with the columns of the batch
// job's CSV output:
//
//	doc_id,text,dupe_id,group_size
//
// dupe_id is the index of the record's group and group_size its member count.
// Writers refuse to emit a record twice or to leave one out.
package report
