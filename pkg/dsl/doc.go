/*
Package dsl builds story documents in Go instead of JSON or YAML.

The fluent builder is handy for generated stories and for tests that want
a small graph without a fixture file.

	b := dsl.New("The Gate")
	b.Add("gate").
		Text("A door of iron.").
		Choice("Knock", "inside", dsl.Gain(domain.StatHeat, 1))
	b.Add("inside").
		Ending("through", "Through").
		Text("You are through.")
	b.LockAt("inside")

	story, err := b.Build()
	// ... pass story to persephone.New
*/
package dsl
