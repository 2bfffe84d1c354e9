package query

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/marketledger/base/ctx"
	"github.com/x-xyz/marketledger/base/database/mongoclient"
	"github.com/x-xyz/marketledger/domain"
)

var (
	mockCTX = ctx.Background()
)

const (
	mockTable = domain.Table("query_test")
	dbName    = "testdb"
)

type Dummy struct {
	Dummy  string `json:"dummy" bson:"dummy"`
	Update string `json:"updatekey" bson:"updatekey"`
}

type querySuite struct {
	suite.Suite
	im *impl
}

func TestQuerySuite(t *testing.T) {
	if os.Getenv("MONGO_URI") == "" {
		t.Skip("MONGO_URI is not set")
	}
	suite.Run(t, new(querySuite))
}

func (q *querySuite) SetupTest() {
	q.im = New(mongoclient.MustConnect(mongoclient.Config{
		URI:      os.Getenv("MONGO_URI"),
		DBName:   dbName,
		SetSafe:  true,
		PoolSize: 1,
	}), false).(*impl)
	q.Require().NoError(q.im.coll(mockTable).Drop(mockCTX))
}

func (q *querySuite) TestFindOne() {
	mockDummyValue := Dummy{"test-value11155", "test-value222255"}

	q.NoError(q.im.Upsert(mockCTX, mockTable, bson.M{"dummy": "test-value11155"}, mockDummyValue))

	result := &Dummy{}
	q.Require().NoError(q.im.FindOne(mockCTX, mockTable, bson.M{"dummy": "test-value11155"}, result))
	q.Equal(mockDummyValue, *result)

	err := q.im.FindOne(mockCTX, mockTable, bson.M{"dummy": "test-value11166"}, result)
	q.Equal(ErrNotFound, err)
}

func (q *querySuite) TestInsertDuplicate() {
	q.NoError(q.im.Insert(mockCTX, mockTable, bson.M{"_id": "a", "dummy": "x"}))
	q.Equal(ErrDuplicateKey, q.im.Insert(mockCTX, mockTable, bson.M{"_id": "a", "dummy": "y"}))

	n, err := q.im.Count(mockCTX, mockTable, bson.M{})
	q.NoError(err)
	q.Equal(1, n)
}

func (q *querySuite) TestSearch() {
	for _, v := range []string{"b", "a", "c"} {
		q.Require().NoError(q.im.Insert(mockCTX, mockTable, Dummy{Dummy: v}))
	}

	res := []Dummy{}
	q.Require().NoError(q.im.Search(mockCTX, mockTable, 1, 2, "-dummy", bson.M{}, &res))
	q.Equal([]Dummy{{Dummy: "b"}, {Dummy: "a"}}, res)
}

func (q *querySuite) TestRemove() {
	q.Require().NoError(q.im.Insert(mockCTX, mockTable, Dummy{Dummy: "x"}))
	q.NoError(q.im.Remove(mockCTX, mockTable, bson.M{"dummy": "x"}))
	q.Equal(ErrNotFound, q.im.Remove(mockCTX, mockTable, bson.M{"dummy": "x"}))
}

func (q *querySuite) TestIncrement() {
	type counter struct {
		N int `bson:"n"`
	}
	res := &counter{}
	q.Require().NoError(q.im.Increment(mockCTX, mockTable, bson.M{"_id": "c"}, res, "n", 2))
	q.Require().NoError(q.im.Increment(mockCTX, mockTable, bson.M{"_id": "c"}, res, "n", -1))
	q.Equal(1, res.N)
}

func (q *querySuite) TestPing() {
	q.NoError(q.im.Ping(mockCTX))
}

func TestSortOption(t *testing.T) {
	req := require.New(t)
	req.Equal(bson.D{{Key: "at", Value: -1}}, getSortOption("-at"))
	req.Equal(bson.D{{Key: "at", Value: 1}}, getSortOption("at"))
	req.Equal(bson.D{}, getSortOption(""))
}
