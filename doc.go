/*
Package persephone is a data-driven narrative engine.

A story is a directed graph of nodes. Choices move the player between nodes,
are gated by declarative conditions over the player state and mutate that state
through declarative effects. The engine collapses grouped choice variants for
presentation, offers back navigation until the story locks it, and serializes
the whole run to an opaque string the host stores wherever it likes.

The engine performs no I/O and never fails on bad data: dangling edges, unknown
operators, malformed expressions and corrupt saves degrade gracefully and are
reported as diagnostics through LifecycleHooks.OnDiagnostic.

# Usage

	eng, err := persephone.Open("story.json", persephone.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}

	store := file.New(".persephone/saves")
	if _, err := eng.Load(ctx, store); err != nil {
		log.Fatal(err)
	}

	for !eng.IsEnding() {
		fmt.Println(eng.Current().Text)
		for _, c := range eng.RenderableChoices() {
			fmt.Println(c.Index, c.Choice.Text, c.Reason)
		}
		eng.Choose(readIndex())
		_ = eng.Save(ctx, store)
	}
*/
package persephone
