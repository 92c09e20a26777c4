package seed

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundmap/internal/database"
	"soundmap/internal/models"
)

func TestSeederRun(t *testing.T) {
	db, err := database.ConnectSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")))
	require.NoError(t, err)

	opts := Options{
		NumUsers:        5,
		PostsPerUser:    3,
		FollowsPerUser:  2,
		CommentChance:   0.5,
		Password:        "test-password",
		MaxDaysBackdate: 30,
	}
	require.NoError(t, New(db, opts).Run())

	var userCount, postCount, followCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	require.NoError(t, db.Model(&models.Follow{}).Count(&followCount).Error)

	assert.Equal(t, int64(5), userCount)
	assert.Equal(t, int64(15), postCount)
	assert.Equal(t, int64(10), followCount)

	// Nobody follows themselves.
	var selfFollows int64
	require.NoError(t, db.Model(&models.Follow{}).
		Where("follower_id = following_id").Count(&selfFollows).Error)
	assert.Zero(t, selfFollows)

	// Some posts carry coordinates, and coordinates always come in pairs.
	var broken int64
	require.NoError(t, db.Model(&models.Post{}).
		Where("(latitude IS NULL) != (longitude IS NULL)").Count(&broken).Error)
	assert.Zero(t, broken)
}

func TestSeederClean(t *testing.T) {
	db, err := database.ConnectSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")))
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.NumUsers = 3
	opts.PostsPerUser = 1
	require.NoError(t, New(db, opts).Run())

	opts.ShouldClean = true
	require.NoError(t, New(db, opts).Run())

	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.Equal(t, int64(3), userCount, "clean run replaces prior data")
}
