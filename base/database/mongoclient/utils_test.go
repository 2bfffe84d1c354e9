package mongoclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMakeBsonM(t *testing.T) {
	type selector struct {
		Name    *string `bson:"name,omitempty"`
		Account *string `bson:"account,omitempty"`
		TokenId string  `bson:"tokenId"`
		Seller  string  `bson:"seller"`
	}

	name := "TokenListed"
	sel := &selector{
		Name:   &name,
		Seller: "0x70997970c51812dc3a010c7d01b50e0d17dc79c8",
	}

	qry, err := MakeBsonM(sel)

	assert.NoError(t, err)
	assert.Equal(
		t,
		bson.M{
			"name": "TokenListed",
			// nil pointer and empty field are left out
			"seller": "0x70997970c51812dc3a010c7d01b50e0d17dc79c8",
		},
		qry,
	)
}
