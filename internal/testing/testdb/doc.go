// Package testdb provides isolated SurrealDB environments for integration
// tests.
//
// Each call to New connects to the instance named by TEST_DB_HOST under a
// fresh namespace, so tests never see each other's data. When TEST_DB_HOST
// is unset the test skips, keeping the suite green without a database.
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t)
//	    defer tdb.Close()
//
//	    tdb.MustExec("CREATE dog:1 CONTENT { name: 'Spark' }", nil)
//	}
package testdb
