package models

// SeedPhotos returns the placeholder photos shown on a fresh profile
func SeedPhotos() []Photo {
	return []Photo{
		seedPhoto(1, "Mountain Landscape", "https://images.unsplash.com/photo-1506744038136-46273834b3fb", SizeWide, 1),
		seedPhoto(2, "Ocean Waves", "https://images.unsplash.com/photo-1500375592092-40eb2168fd21", SizeRegular, 1),
		seedPhoto(3, "Urban Architecture", "https://images.unsplash.com/photo-1527576539890-dfa815648363", SizeTall, 2),
		seedPhoto(4, "Colorful Flowers", "https://images.unsplash.com/photo-1465146344425-f00d5f5c8f07", SizeRegular, 1),
		seedPhoto(5, "Night Sky", "https://images.unsplash.com/photo-1470813740244-df37b8c1edcb", SizeWide, 1),
		seedPhoto(6, "Modern Building", "https://images.unsplash.com/photo-1487958449943-2429e8be8625", SizeTall, 2),
		seedPhoto(7, "River Valley", "https://images.unsplash.com/photo-1482938289607-e9573fc25ebb", SizeRegular, 1),
		seedPhoto(8, "Wavy Building", "https://images.unsplash.com/photo-1493397212122-2b85dda8106b", SizeRegular, 2),
		seedPhoto(9, "Tabby Cat", "https://images.unsplash.com/photo-1582562124811-c09040d0a901", SizeWide),
		seedPhoto(10, "Cozy Living Room", "https://images.unsplash.com/photo-1721322800607-8c38375eef04", SizeTall),
	}
}

// SeedAlbums returns the sample albums shown on a fresh profile
func SeedAlbums() []Album {
	return []Album{
		seedAlbum(1, "Nature", "Mountains, oceans and open skies", 1),
		seedAlbum(2, "Architecture", "Buildings and city lines", 3),
	}
}

func seedPhoto(id int64, title, url string, size PhotoSize, albumIDs ...int64) Photo {
	if albumIDs == nil {
		albumIDs = []int64{}
	}
	return Photo{
		ID:       id,
		Title:    title,
		URL:      url,
		Size:     size,
		AlbumIDs: albumIDs,
	}
}

func seedAlbum(id int64, name, description string, coverPhotoID int64) Album {
	return Album{
		ID:           id,
		Name:         name,
		Description:  &description,
		CoverPhotoID: &coverPhotoID,
	}
}
