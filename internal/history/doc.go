// Package history keeps a SQLite log of export attempts.
//
// Every finished or failed export is stored with its title, file, MIME type
// and timing; the vinyl history command prints the log as a table.
//
//	store, err := history.Open("~/.local/share/vinyl-player/history.db")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	_ = store.Record(ctx, history.FromResult(res))
//	entries, _ := store.List(ctx, 20)
//	fmt.Println(history.Render(entries))
package history
