package deps_test

import (
	"fmt"

	"github.com/matzehuels/overlaysmith/pkg/atom"
	"github.com/matzehuels/overlaysmith/pkg/db"
	"github.com/matzehuels/overlaysmith/pkg/deps"
)

func ExampleResolver_Resolve() {
	database := db.New("")
	_ = database.AddCategory("dev-python", "")
	add := func(p string, dependencies ...string) {
		var desc db.Description
		for _, d := range dependencies {
			desc.Dependencies = append(desc.Dependencies, atom.MustParseDependency(d))
		}
		pkg, _ := atom.ParsePackage(p)
		_ = database.AddPackage(pkg, desc)
	}
	add("dev-python/requests-2.31.0", ">=dev-python/urllib3-1.21", "dev-python/certifi", "app-misc/external")
	add("dev-python/urllib3-1.26.18")
	add("dev-python/urllib3-2.0.7")
	add("dev-python/certifi-2024.2.2")

	res, err := deps.NewResolver(database, nil).Resolve("requests")
	if err != nil {
		panic(err)
	}
	for _, p := range res.Packages.Sorted() {
		fmt.Println(p)
	}
	for _, s := range res.Skipped {
		fmt.Println("skipped:", s.Ref, "-", s.Reason)
	}
	// Output:
	// dev-python/certifi-2024.2.2
	// dev-python/requests-2.31.0
	// dev-python/urllib3-1.26.18
	// dev-python/urllib3-2.0.7
	// skipped: app-misc/external - not in database
}
